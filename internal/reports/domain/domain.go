package domain

// BranchOverview aggregates headline counts for one branch.
type BranchOverview struct {
	BranchID       int64  `json:"branch_id"`
	BranchName     string `json:"branch_name"`
	StudentCount   int    `json:"student_count"`
	ActiveStudents int    `json:"active_students"`
	TeacherCount   int    `json:"teacher_count"`
	CourseCount    int    `json:"course_count"`
	UserCount      int    `json:"user_count"`
}

// AttendanceSummary breaks down attendance marks for a branch within a
// date range. Rate is present+late over all marks.
type AttendanceSummary struct {
	BranchID int64   `json:"branch_id"`
	DateFrom string  `json:"date_from"`
	DateTo   string  `json:"date_to"`
	Present  int     `json:"present"`
	Absent   int     `json:"absent"`
	Late     int     `json:"late"`
	Sick     int     `json:"sick"`
	Excused  int     `json:"excused"`
	Total    int     `json:"total"`
	Rate     float64 `json:"rate"`
}

// GradeBand is one letter band of the course distribution.
type GradeBand struct {
	Band  string `json:"band"`
	Count int    `json:"count"`
}

// GradeDistribution summarises scores for one course and term.
type GradeDistribution struct {
	CourseID   int64       `json:"course_id"`
	CourseName string      `json:"course_name"`
	Term       string      `json:"term"`
	Average    float64     `json:"average"`
	Highest    float64     `json:"highest"`
	Lowest     float64     `json:"lowest"`
	Graded     int         `json:"graded"`
	Bands      []GradeBand `json:"bands"`
}
