package students

import "time"

// Student is a branch-scoped enrollee. NIS is the national student
// number, unique within a branch.
type Student struct {
	ID            int64      `json:"id"`
	BranchID      int64      `json:"branch_id"`
	NIS           string     `json:"nis"`
	FullName      string     `json:"full_name"`
	Email         *string    `json:"email,omitempty"`
	Phone         *string    `json:"phone,omitempty"`
	GuardianName  *string    `json:"guardian_name,omitempty"`
	GuardianPhone *string    `json:"guardian_phone,omitempty"`
	BirthDate     *time.Time `json:"birth_date,omitempty"`
	Gender        *string    `json:"gender,omitempty"`
	Address       *string    `json:"address,omitempty"`
	GradeLevel    *string    `json:"grade_level,omitempty"`
	IsActive      bool       `json:"is_active"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// CourseSummary lists the courses a student is enrolled in on the
// detail view.
type CourseSummary struct {
	CourseID    int64  `json:"course_id"`
	Name        string `json:"name"`
	Code        string `json:"code"`
	TeacherName string `json:"teacher_name"`
}

type StudentDetail struct {
	Student
	Courses []CourseSummary `json:"courses"`
}
