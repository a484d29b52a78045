package grades

import "time"

// Component names the assessment a score belongs to.
type Component string

const (
	ComponentAssignment Component = "assignment"
	ComponentQuiz       Component = "quiz"
	ComponentMidterm    Component = "midterm"
	ComponentFinal      Component = "final"
	ComponentProject    Component = "project"
)

func (c Component) Valid() bool {
	switch c {
	case ComponentAssignment, ComponentQuiz, ComponentMidterm, ComponentFinal, ComponentProject:
		return true
	}
	return false
}

type Grade struct {
	ID         int64     `json:"id"`
	StudentID  int64     `json:"student_id"`
	CourseID   int64     `json:"course_id"`
	Component  Component `json:"component"`
	Score      float64   `json:"score"`
	Term       string    `json:"term"`
	Notes      *string   `json:"notes,omitempty"`
	RecordedBy int64     `json:"recorded_by"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// GradeRow is the list projection with the joined student and course
// names so clients can render without extra lookups.
type GradeRow struct {
	Grade
	StudentName string `json:"student_name"`
	CourseName  string `json:"course_name"`
}
