package users

type CreateUserInput struct {
	BranchID *int64 `json:"branch_id" validate:"omitempty,gt=0"`
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"required,min=2,max=150"`
	Role     string `json:"role" validate:"required"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// UpdateUserInput uses pointer fields so absent keys leave the column
// untouched. Password changes go through their own field and are
// re-hashed; the hash itself is never accepted from the client.
type UpdateUserInput struct {
	BranchID *int64  `json:"branch_id" validate:"omitempty,gt=0"`
	Email    *string `json:"email" validate:"omitempty,email"`
	FullName *string `json:"full_name" validate:"omitempty,min=2,max=150"`
	Role     *string `json:"role"`
	Password *string `json:"password" validate:"omitempty,min=8,max=72"`
	IsActive *bool   `json:"is_active"`
}

type ListFilter struct {
	BranchID *int64
	Role     string
	Active   *bool
}
