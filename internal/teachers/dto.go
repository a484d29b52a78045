package teachers

type CreateTeacherInput struct {
	BranchID  int64   `json:"branch_id" validate:"required,gt=0"`
	NIP       string  `json:"nip" validate:"required,max=30"`
	FullName  string  `json:"full_name" validate:"required,min=2,max=150"`
	Email     string  `json:"email" validate:"required,email"`
	Phone     *string `json:"phone" validate:"omitempty,max=30"`
	Expertise *string `json:"expertise" validate:"omitempty,max=100"`
	HireDate  *string `json:"hire_date" validate:"omitempty,datetime=2006-01-02"`
}

type UpdateTeacherInput struct {
	NIP       *string `json:"nip" validate:"omitempty,max=30"`
	FullName  *string `json:"full_name" validate:"omitempty,min=2,max=150"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Phone     *string `json:"phone" validate:"omitempty,max=30"`
	Expertise *string `json:"expertise" validate:"omitempty,max=100"`
	HireDate  *string `json:"hire_date" validate:"omitempty,datetime=2006-01-02"`
	IsActive  *bool   `json:"is_active"`
}

type ListFilter struct {
	BranchID  *int64
	Expertise string
	Active    *bool
}
