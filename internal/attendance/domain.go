package attendance

import "time"

// Status is the attendance outcome for one student on one course date.
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLate    Status = "late"
	StatusSick    Status = "sick"
	StatusExcused Status = "excused"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPresent, StatusAbsent, StatusLate, StatusSick, StatusExcused:
		return true
	}
	return false
}

// Record is one attendance mark. A student gets at most one record per
// course per date; repeats are conflicts.
type Record struct {
	ID         int64     `json:"id"`
	StudentID  int64     `json:"student_id"`
	CourseID   int64     `json:"course_id"`
	Date       time.Time `json:"date"`
	Status     Status    `json:"status"`
	Notes      *string   `json:"notes,omitempty"`
	RecordedBy int64     `json:"recorded_by"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type RecordRow struct {
	Record
	StudentName string `json:"student_name"`
	CourseName  string `json:"course_name"`
}

// BulkResult reports the outcome of a sheet submission: how many rows
// were written and which student IDs were skipped as duplicates.
type BulkResult struct {
	Recorded int     `json:"recorded"`
	Skipped  []int64 `json:"skipped,omitempty"`
}
