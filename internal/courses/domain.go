package courses

import "time"

type Course struct {
	ID          int64     `json:"id"`
	BranchID    int64     `json:"branch_id"`
	TeacherID   *int64    `json:"teacher_id,omitempty"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	Description *string   `json:"description,omitempty"`
	Credits     int       `json:"credits"`
	Schedule    *string   `json:"schedule,omitempty"`
	Capacity    int       `json:"capacity"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Enrollment ties a student to a course. The pair is unique; a repeat
// enrollment is a conflict, not a no-op.
type Enrollment struct {
	ID         int64     `json:"id"`
	CourseID   int64     `json:"course_id"`
	StudentID  int64     `json:"student_id"`
	EnrolledAt time.Time `json:"enrolled_at"`
}

type RosterEntry struct {
	StudentID  int64     `json:"student_id"`
	NIS        string    `json:"nis"`
	FullName   string    `json:"full_name"`
	EnrolledAt time.Time `json:"enrolled_at"`
}

type CourseDetail struct {
	Course
	TeacherName *string       `json:"teacher_name,omitempty"`
	Roster      []RosterEntry `json:"roster"`
}
