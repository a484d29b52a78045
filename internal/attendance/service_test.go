package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scholaris/scholaris/internal/platform/httpx"
	"github.com/scholaris/scholaris/internal/shared"
)

type sheetKey struct {
	studentID int64
	courseID  int64
	date      string
}

type mockRepository struct {
	records map[sheetKey]*Record
	nextID  int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{records: make(map[sheetKey]*Record), nextID: 1}
}

func keyFor(rec Record) sheetKey {
	return sheetKey{rec.StudentID, rec.CourseID, rec.Date.Format("2006-01-02")}
}

func (m *mockRepository) List(ctx context.Context, q shared.PageQuery, f ListFilter) ([]RecordRow, int, error) {
	return []RecordRow{}, 0, nil
}

func (m *mockRepository) Get(ctx context.Context, id int64) (*Record, error) {
	for _, rec := range m.records {
		if rec.ID == id {
			copied := *rec
			return &copied, nil
		}
	}
	return nil, httpx.NotFound("attendance record not found")
}

func (m *mockRepository) Create(ctx context.Context, rec Record) (*Record, error) {
	key := keyFor(rec)
	if _, ok := m.records[key]; ok {
		return nil, httpx.Conflict("duplicate value: attendance exists")
	}
	rec.ID = m.nextID
	m.nextID++
	m.records[key] = &rec
	return &rec, nil
}

// BulkCreate mirrors the ON CONFLICT DO NOTHING insert: existing rows
// are skipped, not overwritten.
func (m *mockRepository) BulkCreate(ctx context.Context, recs []Record) (*BulkResult, error) {
	result := &BulkResult{}
	for _, rec := range recs {
		key := keyFor(rec)
		if _, ok := m.records[key]; ok {
			result.Skipped = append(result.Skipped, rec.StudentID)
			continue
		}
		rec.ID = m.nextID
		m.nextID++
		stored := rec
		m.records[key] = &stored
		result.Recorded++
	}
	return result, nil
}

func (m *mockRepository) Update(ctx context.Context, id int64, updates map[string]any) (*Record, error) {
	for _, rec := range m.records {
		if rec.ID == id {
			if status, ok := updates["status"].(Status); ok {
				rec.Status = status
			}
			copied := *rec
			return &copied, nil
		}
	}
	return nil, httpx.NotFound("attendance record not found")
}

func (m *mockRepository) Delete(ctx context.Context, id int64) error {
	for key, rec := range m.records {
		if rec.ID == id {
			delete(m.records, key)
			return nil
		}
	}
	return httpx.NotFound("attendance record not found")
}

// ============================================================================
// TESTS
// ============================================================================

func TestCreateRecord(t *testing.T) {
	svc := NewService(newMockRepository(), nil, nil, nil)

	created, err := svc.Create(context.Background(), CreateRecordInput{
		StudentID: 1,
		CourseID:  2,
		Date:      "2026-09-01",
		Status:    "Present",
	}, 10)
	require.NoError(t, err)

	assert.Equal(t, StatusPresent, created.Status)
	assert.Equal(t, int64(10), created.RecordedBy)
	assert.Equal(t, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), created.Date)
}

func TestCreateRecordRejectsBadStatus(t *testing.T) {
	svc := NewService(newMockRepository(), nil, nil, nil)

	_, err := svc.Create(context.Background(), CreateRecordInput{
		StudentID: 1, CourseID: 2, Date: "2026-09-01", Status: "vacation",
	}, 10)
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateRecordRejectsBadDate(t *testing.T) {
	svc := NewService(newMockRepository(), nil, nil, nil)

	_, err := svc.Create(context.Background(), CreateRecordInput{
		StudentID: 1, CourseID: 2, Date: "01/09/2026", Status: "present",
	}, 10)
	require.ErrorIs(t, err, httpx.ErrValidation)
	assert.Contains(t, err.Error(), "YYYY-MM-DD")
}

func TestCreateRecordDuplicateIsConflict(t *testing.T) {
	svc := NewService(newMockRepository(), nil, nil, nil)
	input := CreateRecordInput{StudentID: 1, CourseID: 2, Date: "2026-09-01", Status: "present"}

	_, err := svc.Create(context.Background(), input, 10)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), input, 10)
	assert.ErrorIs(t, err, httpx.ErrConflict)
}

func TestBulkRecordSheet(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil, nil)

	result, err := svc.BulkRecord(context.Background(), BulkRecordInput{
		CourseID: 2,
		Date:     "2026-09-01",
		Entries: []BulkEntry{
			{StudentID: 1, Status: "present"},
			{StudentID: 2, Status: "late"},
			{StudentID: 3, Status: "sick"},
		},
	}, 10)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Recorded)
	assert.Empty(t, result.Skipped)
	assert.Len(t, repo.records, 3)
}

func TestBulkRecordSkipsExistingRows(t *testing.T) {
	svc := NewService(newMockRepository(), nil, nil, nil)

	_, err := svc.Create(context.Background(), CreateRecordInput{
		StudentID: 2, CourseID: 2, Date: "2026-09-01", Status: "absent",
	}, 10)
	require.NoError(t, err)

	result, err := svc.BulkRecord(context.Background(), BulkRecordInput{
		CourseID: 2,
		Date:     "2026-09-01",
		Entries: []BulkEntry{
			{StudentID: 1, Status: "present"},
			{StudentID: 2, Status: "present"},
		},
	}, 10)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Recorded)
	assert.Equal(t, []int64{2}, result.Skipped)
}

func TestBulkRecordRejectsSheetOnFirstBadStatus(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, nil, nil, nil)

	_, err := svc.BulkRecord(context.Background(), BulkRecordInput{
		CourseID: 2,
		Date:     "2026-09-01",
		Entries: []BulkEntry{
			{StudentID: 1, Status: "present"},
			{StudentID: 2, Status: "holiday"},
		},
	}, 10)
	require.ErrorIs(t, err, httpx.ErrValidation)
	assert.Contains(t, err.Error(), "student 2")
	assert.Empty(t, repo.records, "an invalid row must reject the whole sheet before any write")
}

func TestBulkRecordRequiresEntries(t *testing.T) {
	svc := NewService(newMockRepository(), nil, nil, nil)

	_, err := svc.BulkRecord(context.Background(), BulkRecordInput{
		CourseID: 2, Date: "2026-09-01",
	}, 10)
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdateRecordStatus(t *testing.T) {
	svc := NewService(newMockRepository(), nil, nil, nil)
	created, err := svc.Create(context.Background(), CreateRecordInput{
		StudentID: 1, CourseID: 2, Date: "2026-09-01", Status: "absent",
	}, 10)
	require.NoError(t, err)

	status := "excused"
	updated, err := svc.Update(context.Background(), created.ID, UpdateRecordInput{Status: &status}, 10)
	require.NoError(t, err)
	assert.Equal(t, StatusExcused, updated.Status)
}

// ====== MOCK REPORT INVALIDATOR ======

type mockInvalidator struct {
	bumps int
}

func (m *mockInvalidator) Invalidate(ctx context.Context) error {
	m.bumps++
	return nil
}

func TestAttendanceWritesBustReportCache(t *testing.T) {
	inv := &mockInvalidator{}
	svc := NewService(newMockRepository(), nil, inv, nil)

	created, err := svc.Create(context.Background(), CreateRecordInput{
		StudentID: 1, CourseID: 2, Date: "2026-09-01", Status: "present",
	}, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, inv.bumps)

	status := "excused"
	_, err = svc.Update(context.Background(), created.ID, UpdateRecordInput{Status: &status}, 7)
	require.NoError(t, err)
	assert.Equal(t, 2, inv.bumps)
}

func TestAttendanceBulkBustsReportCacheOnce(t *testing.T) {
	inv := &mockInvalidator{}
	svc := NewService(newMockRepository(), nil, inv, nil)

	_, err := svc.BulkRecord(context.Background(), BulkRecordInput{
		CourseID: 2,
		Date:     "2026-09-01",
		Entries: []BulkEntry{
			{StudentID: 1, Status: "present"},
			{StudentID: 2, Status: "absent"},
			{StudentID: 3, Status: "sick"},
		},
	}, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, inv.bumps)
}

func TestAttendanceInvalidSheetDoesNotBustReportCache(t *testing.T) {
	inv := &mockInvalidator{}
	svc := NewService(newMockRepository(), nil, inv, nil)

	_, err := svc.BulkRecord(context.Background(), BulkRecordInput{
		CourseID: 2,
		Date:     "2026-09-01",
		Entries: []BulkEntry{
			{StudentID: 1, Status: "present"},
			{StudentID: 2, Status: "vacation"},
		},
	}, 7)
	require.ErrorIs(t, err, httpx.ErrValidation)
	assert.Zero(t, inv.bumps)
}
