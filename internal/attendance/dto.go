package attendance

type CreateRecordInput struct {
	StudentID int64   `json:"student_id" validate:"required,gt=0"`
	CourseID  int64   `json:"course_id" validate:"required,gt=0"`
	Date      string  `json:"date" validate:"required,datetime=2006-01-02"`
	Status    string  `json:"status" validate:"required"`
	Notes     *string `json:"notes" validate:"omitempty,max=500"`
}

type UpdateRecordInput struct {
	Status *string `json:"status"`
	Notes  *string `json:"notes" validate:"omitempty,max=500"`
}

// BulkRecordInput is one sheet: every student mark for a course on a
// single date.
type BulkRecordInput struct {
	CourseID int64       `json:"course_id" validate:"required,gt=0"`
	Date     string      `json:"date" validate:"required,datetime=2006-01-02"`
	Entries  []BulkEntry `json:"entries" validate:"required,min=1,max=500,dive"`
}

type BulkEntry struct {
	StudentID int64   `json:"student_id" validate:"required,gt=0"`
	Status    string  `json:"status" validate:"required"`
	Notes     *string `json:"notes" validate:"omitempty,max=500"`
}

type ListFilter struct {
	StudentID *int64
	CourseID  *int64
	Status    string
	DateFrom  string
	DateTo    string
}
