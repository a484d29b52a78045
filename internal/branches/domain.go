package branches

import "time"

// Branch is the tenant unit under which users, students, teachers and
// courses are grouped.
type Branch struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Code         string    `json:"code"`
	AddressLine1 *string   `json:"address_line1,omitempty"`
	AddressLine2 *string   `json:"address_line2,omitempty"`
	City         *string   `json:"city,omitempty"`
	PostalCode   *string   `json:"postal_code,omitempty"`
	Phone        *string   `json:"phone,omitempty"`
	Email        *string   `json:"email,omitempty"`
	Timezone     string    `json:"timezone"`
	Currency     string    `json:"currency"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// MemberSummary is the minimal projection of a related person record
// embedded in a branch detail, keeping the response size bounded.
type MemberSummary struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email,omitempty"`
}

// BranchDetail is a branch plus bounded summaries of its members.
type BranchDetail struct {
	Branch
	Users    []MemberSummary `json:"users"`
	Students []MemberSummary `json:"students"`
	Teachers []MemberSummary `json:"teachers"`
}
