package grades

type CreateGradeInput struct {
	StudentID int64   `json:"student_id" validate:"required,gt=0"`
	CourseID  int64   `json:"course_id" validate:"required,gt=0"`
	Component string  `json:"component" validate:"required"`
	Score     float64 `json:"score" validate:"gte=0,lte=100"`
	Term      string  `json:"term" validate:"required,max=20"`
	Notes     *string `json:"notes" validate:"omitempty,max=500"`
}

type UpdateGradeInput struct {
	Score *float64 `json:"score" validate:"omitempty,gte=0,lte=100"`
	Notes *string  `json:"notes" validate:"omitempty,max=500"`
}

type ListFilter struct {
	StudentID *int64
	CourseID  *int64
	Component string
	Term      string
}
