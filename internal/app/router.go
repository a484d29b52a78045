package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/scholaris/scholaris/internal/announcements"
	"github.com/scholaris/scholaris/internal/attendance"
	"github.com/scholaris/scholaris/internal/auth"
	"github.com/scholaris/scholaris/internal/branches"
	"github.com/scholaris/scholaris/internal/courses"
	"github.com/scholaris/scholaris/internal/grades"
	"github.com/scholaris/scholaris/internal/messaging"
	"github.com/scholaris/scholaris/internal/observability"
	"github.com/scholaris/scholaris/internal/rbac"
	"github.com/scholaris/scholaris/internal/reports"
	"github.com/scholaris/scholaris/internal/shared"
	"github.com/scholaris/scholaris/internal/students"
	"github.com/scholaris/scholaris/internal/teachers"
	"github.com/scholaris/scholaris/internal/users"
	"github.com/scholaris/scholaris/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	RBACMiddleware rbac.Middleware

	AuthHandler          *auth.Handler
	BranchHandler        *branches.Handler
	UserHandler          *users.Handler
	StudentHandler       *students.Handler
	TeacherHandler       *teachers.Handler
	CourseHandler        *courses.Handler
	GradeHandler         *grades.Handler
	AttendanceHandler    *attendance.Handler
	AnnouncementHandler  *announcements.Handler
	MessagingHandler     *messaging.Handler
	ReportHandler        *reports.Handler
	RBACHandler          *rbac.Handler
	JobHandler           *jobs.Handler
	Metrics              *observability.Metrics
}

// NewRouter constructs the chi.Router with platform defaults. All API
// resources live under /api/v1 and require an authenticated session;
// RBAC guards sit inside each handler's MountRoutes.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(requireSession(params.Logger))

		r.Route("/branches", params.BranchHandler.MountRoutes)
		r.Route("/users", params.UserHandler.MountRoutes)
		r.Route("/students", params.StudentHandler.MountRoutes)
		r.Route("/teachers", params.TeacherHandler.MountRoutes)
		r.Route("/courses", params.CourseHandler.MountRoutes)
		r.Route("/grades", params.GradeHandler.MountRoutes)
		r.Route("/attendance", params.AttendanceHandler.MountRoutes)
		r.Route("/announcements", params.AnnouncementHandler.MountRoutes)
		r.Route("/messages", params.MessagingHandler.MountRoutes)
		r.Route("/reports", params.ReportHandler.MountRoutes)
		if params.RBACHandler != nil {
			params.RBACHandler.MountRoutes(r)
		}
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
