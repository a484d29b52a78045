package teachers

import "time"

// Teacher is a branch-scoped member of the teaching staff. NIP is the
// staff registration number, unique within a branch.
type Teacher struct {
	ID        int64      `json:"id"`
	BranchID  int64      `json:"branch_id"`
	NIP       string     `json:"nip"`
	FullName  string     `json:"full_name"`
	Email     string     `json:"email"`
	Phone     *string    `json:"phone,omitempty"`
	Expertise *string    `json:"expertise,omitempty"`
	HireDate  *time.Time `json:"hire_date,omitempty"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type CourseSummary struct {
	CourseID int64  `json:"course_id"`
	Name     string `json:"name"`
	Code     string `json:"code"`
	Enrolled int    `json:"enrolled"`
}

type TeacherDetail struct {
	Teacher
	Courses []CourseSummary `json:"courses"`
}
