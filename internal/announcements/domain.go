package announcements

import "time"

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Audience selects who a published announcement is delivered to.
type Audience string

const (
	AudienceAll      Audience = "all"
	AudienceStudents Audience = "students"
	AudienceTeachers Audience = "teachers"
	AudienceStaff    Audience = "staff"
)

func (a Audience) Valid() bool {
	switch a {
	case AudienceAll, AudienceStudents, AudienceTeachers, AudienceStaff:
		return true
	}
	return false
}

type Announcement struct {
	ID          int64      `json:"id"`
	BranchID    int64      `json:"branch_id"`
	AuthorID    int64      `json:"author_id"`
	Title       string     `json:"title"`
	Body        string     `json:"body"`
	Audience    Audience   `json:"audience"`
	Status      Status     `json:"status"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
