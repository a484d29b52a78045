package export

import (
	"encoding/csv"
	"io"
	"strconv"

	reports "github.com/scholaris/scholaris/internal/reports/domain"
)

// WriteBranchOverviewCSV serialises a branch overview to CSV.
func WriteBranchOverviewCSV(w io.Writer, overview reports.BranchOverview) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Metric", "Value"}); err != nil {
		return err
	}
	records := [][]string{
		{"Branch", overview.BranchName},
		{"Students", formatInt(overview.StudentCount)},
		{"Active Students", formatInt(overview.ActiveStudents)},
		{"Teachers", formatInt(overview.TeacherCount)},
		{"Courses", formatInt(overview.CourseCount)},
		{"Staff Accounts", formatInt(overview.UserCount)},
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteAttendanceSummaryCSV emits the attendance breakdown as CSV.
func WriteAttendanceSummaryCSV(w io.Writer, summary reports.AttendanceSummary) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Metric", "Value"}); err != nil {
		return err
	}
	records := [][]string{
		{"From", summary.DateFrom},
		{"To", summary.DateTo},
		{"Present", formatInt(summary.Present)},
		{"Absent", formatInt(summary.Absent)},
		{"Late", formatInt(summary.Late)},
		{"Sick", formatInt(summary.Sick)},
		{"Excused", formatInt(summary.Excused)},
		{"Total", formatInt(summary.Total)},
		{"Attendance Rate", formatFloat(summary.Rate)},
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteGradeDistributionCSV prints per-band counts for one course.
func WriteGradeDistributionCSV(w io.Writer, dist reports.GradeDistribution) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Band", "Count"}); err != nil {
		return err
	}
	for _, band := range dist.Bands {
		if err := writer.Write([]string{band.Band, formatInt(band.Count)}); err != nil {
			return err
		}
	}
	if err := writer.Write([]string{"Average", formatFloat(dist.Average)}); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

func formatInt(v int) string {
	return strconv.Itoa(v)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
