package courses

type CreateCourseInput struct {
	BranchID    int64   `json:"branch_id" validate:"required,gt=0"`
	TeacherID   *int64  `json:"teacher_id" validate:"omitempty,gt=0"`
	Name        string  `json:"name" validate:"required,min=2,max=150"`
	Code        string  `json:"code" validate:"required,max=30"`
	Description *string `json:"description"`
	Credits     int     `json:"credits" validate:"omitempty,gte=0,lte=20"`
	Schedule    *string `json:"schedule" validate:"omitempty,max=200"`
	Capacity    int     `json:"capacity" validate:"omitempty,gte=0,lte=1000"`
}

type UpdateCourseInput struct {
	TeacherID   *int64  `json:"teacher_id" validate:"omitempty,gt=0"`
	Name        *string `json:"name" validate:"omitempty,min=2,max=150"`
	Code        *string `json:"code" validate:"omitempty,max=30"`
	Description *string `json:"description"`
	Credits     *int    `json:"credits" validate:"omitempty,gte=0,lte=20"`
	Schedule    *string `json:"schedule" validate:"omitempty,max=200"`
	Capacity    *int    `json:"capacity" validate:"omitempty,gte=0,lte=1000"`
	IsActive    *bool   `json:"is_active"`
}

type EnrollInput struct {
	StudentID int64 `json:"student_id" validate:"required,gt=0"`
}

type ListFilter struct {
	BranchID  *int64
	TeacherID *int64
	Active    *bool
}
