package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	reports "github.com/scholaris/scholaris/internal/reports/domain"
)

// OverviewPayload bundles the reports rendered onto one branch PDF.
type OverviewPayload struct {
	Overview   reports.BranchOverview
	Attendance *reports.AttendanceSummary
}

// PDFExporter wraps Gotenberg interactions for report exports.
type PDFExporter struct {
	Endpoint string
	Client   *http.Client
}

// Ping checks the Gotenberg service, used by the readiness probe.
func (p *PDFExporter) Ping(ctx context.Context) error {
	if p == nil || strings.TrimSpace(p.Endpoint) == "" {
		return fmt.Errorf("gotenberg endpoint required")
	}
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(p.Endpoint, "/")+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("gotenberg returned status %d", resp.StatusCode)
	}
	return nil
}

// RenderOverview sends HTML content to Gotenberg and returns PDF bytes.
func (p *PDFExporter) RenderOverview(ctx context.Context, payload OverviewPayload) ([]byte, error) {
	if p == nil {
		return nil, fmt.Errorf("pdf exporter not initialised")
	}
	endpoint := strings.TrimRight(p.Endpoint, "/")
	if endpoint == "" {
		return nil, fmt.Errorf("gotenberg endpoint required")
	}
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}

	html := buildHTML(payload)
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("files", "overview.html")
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(part, html); err != nil {
		return nil, err
	}
	if err := writer.WriteField("waitDelay", "500"); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"/forms/chromium/convert/html", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("gotenberg response %d: %s", resp.StatusCode, string(data))
	}
	return io.ReadAll(resp.Body)
}

func buildHTML(payload OverviewPayload) string {
	var b strings.Builder
	b.WriteString("<html><head><meta charset=\"utf-8\"><style>")
	b.WriteString("body{font-family:sans-serif;margin:24px;}h1{font-size:20px;}table{width:100%;border-collapse:collapse;margin-bottom:16px;}th,td{border:1px solid #ddd;padding:6px;text-align:right;}th{text-align:left;background:#f5f5f5;}section{margin-bottom:24px;} .metric-label{text-align:left;}")
	b.WriteString("</style></head><body>")
	b.WriteString(fmt.Sprintf("<h1>Branch Report – %s</h1>", templateEscape(payload.Overview.BranchName)))

	b.WriteString("<section><h2>Overview</h2><table><tbody>")
	writeMetricRow(&b, "Students", payload.Overview.StudentCount)
	writeMetricRow(&b, "Active Students", payload.Overview.ActiveStudents)
	writeMetricRow(&b, "Teachers", payload.Overview.TeacherCount)
	writeMetricRow(&b, "Courses", payload.Overview.CourseCount)
	writeMetricRow(&b, "Staff Accounts", payload.Overview.UserCount)
	b.WriteString("</tbody></table></section>")

	if payload.Attendance != nil {
		a := payload.Attendance
		b.WriteString(fmt.Sprintf("<section><h2>Attendance %s to %s</h2><table><tbody>",
			templateEscape(a.DateFrom), templateEscape(a.DateTo)))
		writeMetricRow(&b, "Present", a.Present)
		writeMetricRow(&b, "Absent", a.Absent)
		writeMetricRow(&b, "Late", a.Late)
		writeMetricRow(&b, "Sick", a.Sick)
		writeMetricRow(&b, "Excused", a.Excused)
		b.WriteString("<tr><td class=\"metric-label\">Attendance Rate</td><td>")
		b.WriteString(formatFloat(a.Rate))
		b.WriteString("</td></tr>")
		b.WriteString("</tbody></table></section>")
	}

	b.WriteString("</body></html>")
	return b.String()
}

func writeMetricRow(b *strings.Builder, label string, value int) {
	b.WriteString("<tr><td class=\"metric-label\">")
	b.WriteString(templateEscape(label))
	b.WriteString("</td><td>")
	b.WriteString(formatInt(value))
	b.WriteString("</td></tr>")
}

func templateEscape(v string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\"", "&quot;",
		"'", "&#39;",
	)
	return replacer.Replace(v)
}
