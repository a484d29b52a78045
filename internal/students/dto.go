package students

type CreateStudentInput struct {
	BranchID      int64   `json:"branch_id" validate:"required,gt=0"`
	NIS           string  `json:"nis" validate:"required,max=30"`
	FullName      string  `json:"full_name" validate:"required,min=2,max=150"`
	Email         *string `json:"email" validate:"omitempty,email"`
	Phone         *string `json:"phone" validate:"omitempty,max=30"`
	GuardianName  *string `json:"guardian_name" validate:"omitempty,max=150"`
	GuardianPhone *string `json:"guardian_phone" validate:"omitempty,max=30"`
	BirthDate     *string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Gender        *string `json:"gender" validate:"omitempty,oneof=male female"`
	Address       *string `json:"address"`
	GradeLevel    *string `json:"grade_level" validate:"omitempty,max=20"`
}

type UpdateStudentInput struct {
	NIS           *string `json:"nis" validate:"omitempty,max=30"`
	FullName      *string `json:"full_name" validate:"omitempty,min=2,max=150"`
	Email         *string `json:"email" validate:"omitempty,email"`
	Phone         *string `json:"phone" validate:"omitempty,max=30"`
	GuardianName  *string `json:"guardian_name" validate:"omitempty,max=150"`
	GuardianPhone *string `json:"guardian_phone" validate:"omitempty,max=30"`
	BirthDate     *string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Gender        *string `json:"gender" validate:"omitempty,oneof=male female"`
	Address       *string `json:"address"`
	GradeLevel    *string `json:"grade_level" validate:"omitempty,max=20"`
	IsActive      *bool   `json:"is_active"`
}

type ListFilter struct {
	BranchID   *int64
	GradeLevel string
	Active     *bool
}
