package reports

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/scholaris/scholaris/internal/platform/httpx"
	"github.com/scholaris/scholaris/internal/rbac"
	"github.com/scholaris/scholaris/internal/reports/export"
	"github.com/scholaris/scholaris/internal/shared"
)

// Handler serves the report endpoints. Export routes carry their own
// rate limit because a PDF render holds a Gotenberg slot.
type Handler struct {
	logger  *slog.Logger
	service *Service
	pdf     *export.PDFExporter
	rbac    rbac.Middleware
}

func NewHandler(logger *slog.Logger, service *Service, pdf *export.PDFExporter, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, pdf: pdf, rbac: rbac}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermReportsView))
		r.Get("/overview/{branchID}", h.overview)
		r.Get("/attendance/{branchID}", h.attendance)
		r.Get("/grades/{courseID}", h.grades)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermReportsExport))
		r.Use(httprate.LimitByIP(10, time.Minute))
		r.Get("/overview/{branchID}/export.csv", h.overviewCSV)
		r.Get("/overview/{branchID}/export.pdf", h.overviewPDF)
		r.Get("/attendance/{branchID}/export.csv", h.attendanceCSV)
		r.Get("/grades/{courseID}/export.csv", h.gradesCSV)
	})
}

func (h *Handler) overview(w http.ResponseWriter, r *http.Request) {
	branchID, err := parseID(r, "branchID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	overview, err := h.service.BranchOverview(r.Context(), branchID)
	if err != nil {
		h.logger.Error("branch overview report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, overview)
}

func (h *Handler) attendance(w http.ResponseWriter, r *http.Request) {
	branchID, err := parseID(r, "branchID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	summary, err := h.service.AttendanceSummary(r.Context(), branchID,
		r.URL.Query().Get("date_from"), r.URL.Query().Get("date_to"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, summary)
}

func (h *Handler) grades(w http.ResponseWriter, r *http.Request) {
	courseID, err := parseID(r, "courseID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	dist, err := h.service.GradeDistribution(r.Context(), courseID, r.URL.Query().Get("term"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, dist)
}

func (h *Handler) overviewCSV(w http.ResponseWriter, r *http.Request) {
	branchID, err := parseID(r, "branchID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	overview, err := h.service.BranchOverview(r.Context(), branchID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="branch-overview.csv"`)
	if err := export.WriteBranchOverviewCSV(w, *overview); err != nil {
		h.logger.Error("write overview csv", slog.Any("error", err))
	}
}

func (h *Handler) overviewPDF(w http.ResponseWriter, r *http.Request) {
	branchID, err := parseID(r, "branchID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	overview, err := h.service.BranchOverview(r.Context(), branchID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	attendance, err := h.service.AttendanceSummary(r.Context(), branchID, "", "")
	if err != nil {
		attendance = nil
	}
	pdf, err := h.pdf.RenderOverview(r.Context(), export.OverviewPayload{
		Overview:   *overview,
		Attendance: attendance,
	})
	if err != nil {
		h.logger.Error("render overview pdf", slog.Any("error", err))
		httpx.JSON(w, http.StatusServiceUnavailable, httpx.Envelope{Success: false, Message: "pdf rendering unavailable"})
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="branch-overview.pdf"`)
	_, _ = w.Write(pdf)
}

func (h *Handler) attendanceCSV(w http.ResponseWriter, r *http.Request) {
	branchID, err := parseID(r, "branchID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	summary, err := h.service.AttendanceSummary(r.Context(), branchID,
		r.URL.Query().Get("date_from"), r.URL.Query().Get("date_to"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="attendance-summary.csv"`)
	if err := export.WriteAttendanceSummaryCSV(w, *summary); err != nil {
		h.logger.Error("write attendance csv", slog.Any("error", err))
	}
}

func (h *Handler) gradesCSV(w http.ResponseWriter, r *http.Request) {
	courseID, err := parseID(r, "courseID")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	dist, err := h.service.GradeDistribution(r.Context(), courseID, r.URL.Query().Get("term"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="grade-distribution.csv"`)
	if err := export.WriteGradeDistributionCSV(w, *dist); err != nil {
		h.logger.Error("write grades csv", slog.Any("error", err))
	}
}

func parseID(r *http.Request, key string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, key), 10, 64)
	if err != nil || id <= 0 {
		return 0, httpx.Validation("invalid id")
	}
	return id, nil
}
