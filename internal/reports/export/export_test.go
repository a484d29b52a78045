package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	reports "github.com/scholaris/scholaris/internal/reports/domain"
)

func TestWriteBranchOverviewCSV(t *testing.T) {
	overview := reports.BranchOverview{
		BranchID:       1,
		BranchName:     "Main Campus",
		StudentCount:   120,
		ActiveStudents: 115,
		TeacherCount:   14,
		CourseCount:    22,
		UserCount:      9,
	}
	buf := &bytes.Buffer{}
	if err := WriteBranchOverviewCSV(buf, overview); err != nil {
		t.Fatalf("overview csv error: %v", err)
	}
	records, err := csv.NewReader(bytes.NewReader(buf.Bytes())).ReadAll()
	if err != nil {
		t.Fatalf("csv read error: %v", err)
	}
	if len(records) != 7 {
		t.Fatalf("expected header plus 6 rows, got %d", len(records))
	}
	if records[1][0] != "Branch" || records[1][1] != "Main Campus" {
		t.Fatalf("unexpected branch row %v", records[1])
	}
	if records[2][1] != "120" {
		t.Fatalf("unexpected student count %q", records[2][1])
	}
}

func TestWriteAttendanceSummaryCSV(t *testing.T) {
	summary := reports.AttendanceSummary{
		BranchID: 1,
		DateFrom: "2026-08-01",
		DateTo:   "2026-08-31",
		Present:  400,
		Absent:   30,
		Late:     20,
		Total:    450,
		Rate:     0.9333,
	}
	buf := &bytes.Buffer{}
	if err := WriteAttendanceSummaryCSV(buf, summary); err != nil {
		t.Fatalf("attendance csv error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Attendance Rate,0.93") {
		t.Fatalf("rate row missing in %q", out)
	}
}

func TestWriteGradeDistributionCSV(t *testing.T) {
	dist := reports.GradeDistribution{
		CourseID: 2,
		Term:     "2026-1",
		Average:  78.25,
		Bands: []reports.GradeBand{
			{Band: "A", Count: 5},
			{Band: "B", Count: 12},
			{Band: "E", Count: 1},
		},
	}
	buf := &bytes.Buffer{}
	if err := WriteGradeDistributionCSV(buf, dist); err != nil {
		t.Fatalf("grades csv error: %v", err)
	}
	records, err := csv.NewReader(bytes.NewReader(buf.Bytes())).ReadAll()
	if err != nil {
		t.Fatalf("csv read error: %v", err)
	}
	// Header, three bands, average line.
	if len(records) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(records))
	}
	if records[4][0] != "Average" || records[4][1] != "78.25" {
		t.Fatalf("unexpected average row %v", records[4])
	}
}

func TestPDFExporterRenderOverview(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/forms/chromium/convert/html" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(4 << 10); err != nil {
			t.Fatalf("unexpected parse error: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("PDF"))
	}))
	defer srv.Close()

	exporter := &PDFExporter{Endpoint: srv.URL}
	payload := OverviewPayload{Overview: reports.BranchOverview{BranchName: "Main Campus"}}
	data, err := exporter.RenderOverview(context.Background(), payload)
	if err != nil {
		t.Fatalf("pdf render error: %v", err)
	}
	if string(data) != "PDF" {
		t.Fatalf("unexpected payload %q", string(data))
	}
}

func TestPDFExporterRenderOverviewFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	exporter := &PDFExporter{Endpoint: srv.URL}
	if _, err := exporter.RenderOverview(context.Background(), OverviewPayload{}); err == nil {
		t.Fatal("expected error for upstream failure")
	}
}
