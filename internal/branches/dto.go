package branches

// CreateBranchRequest carries the payload for branch creation. Name and
// code are the only mandatory fields; timezone and currency receive
// defaults when omitted.
type CreateBranchRequest struct {
	Name         string  `json:"name" validate:"required,max=200"`
	Code         string  `json:"code" validate:"required,max=20"`
	AddressLine1 *string `json:"address_line1,omitempty" validate:"omitempty,max=200"`
	AddressLine2 *string `json:"address_line2,omitempty" validate:"omitempty,max=200"`
	City         *string `json:"city,omitempty" validate:"omitempty,max=100"`
	PostalCode   *string `json:"postal_code,omitempty" validate:"omitempty,max=20"`
	Phone        *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Email        *string `json:"email,omitempty" validate:"omitempty,email"`
	Timezone     string  `json:"timezone,omitempty" validate:"omitempty,max=50"`
	Currency     string  `json:"currency,omitempty" validate:"omitempty,len=3"`
}

// UpdateBranchRequest is the partial payload for updates. Only fields the
// caller sets are written; anything else never reaches storage.
type UpdateBranchRequest struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Code         *string `json:"code,omitempty" validate:"omitempty,max=20"`
	AddressLine1 *string `json:"address_line1,omitempty" validate:"omitempty,max=200"`
	AddressLine2 *string `json:"address_line2,omitempty" validate:"omitempty,max=200"`
	City         *string `json:"city,omitempty" validate:"omitempty,max=100"`
	PostalCode   *string `json:"postal_code,omitempty" validate:"omitempty,max=20"`
	Phone        *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Email        *string `json:"email,omitempty" validate:"omitempty,email"`
	Timezone     *string `json:"timezone,omitempty" validate:"omitempty,max=50"`
	Currency     *string `json:"currency,omitempty" validate:"omitempty,len=3"`
	IsActive     *bool   `json:"is_active,omitempty"`
}
