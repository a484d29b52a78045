package announcements

type CreateAnnouncementInput struct {
	BranchID int64  `json:"branch_id" validate:"required,gt=0"`
	Title    string `json:"title" validate:"required,min=2,max=200"`
	Body     string `json:"body" validate:"required"`
	Audience string `json:"audience" validate:"required"`
}

type UpdateAnnouncementInput struct {
	Title    *string `json:"title" validate:"omitempty,min=2,max=200"`
	Body     *string `json:"body"`
	Audience *string `json:"audience"`
}

type ListFilter struct {
	BranchID *int64
	Status   string
	Audience string
}
