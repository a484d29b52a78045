package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/scholaris/scholaris/internal/announcements"
	"github.com/scholaris/scholaris/internal/app"
	"github.com/scholaris/scholaris/internal/attendance"
	"github.com/scholaris/scholaris/internal/auth"
	"github.com/scholaris/scholaris/internal/branches"
	"github.com/scholaris/scholaris/internal/courses"
	"github.com/scholaris/scholaris/internal/grades"
	"github.com/scholaris/scholaris/internal/messaging"
	"github.com/scholaris/scholaris/internal/observability"
	"github.com/scholaris/scholaris/internal/rbac"
	"github.com/scholaris/scholaris/internal/reports"
	"github.com/scholaris/scholaris/internal/reports/export"
	"github.com/scholaris/scholaris/internal/shared"
	"github.com/scholaris/scholaris/internal/students"
	"github.com/scholaris/scholaris/internal/teachers"
	"github.com/scholaris/scholaris/internal/users"
	"github.com/scholaris/scholaris/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}

	sessions := shared.NewSessionManager(redisClient, "scholaris_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrf := shared.NewCSRFManager(cfg.CSRFSecret)
	auditLogger := shared.NewAuditLogger(pool)
	idemStore := shared.NewIdempotencyStore(pool)

	rbacService := rbac.NewService(pool)
	guard := rbac.Middleware{Service: rbacService, Logger: logger}

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	authService := auth.NewService(auth.NewRepository(pool))
	authHandler := auth.NewHandler(logger, authService, sessions, csrf)

	branchService := branches.NewService(branches.NewRepository(pool), auditLogger, logger)
	branchHandler := branches.NewHandler(logger, branchService, guard)

	userService := users.NewService(users.NewRepository(pool), auditLogger, logger)
	userHandler := users.NewHandler(logger, userService, guard)

	studentService := students.NewService(students.NewRepository(pool), auditLogger, logger)
	studentHandler := students.NewHandler(logger, studentService, guard)

	teacherService := teachers.NewService(teachers.NewRepository(pool), auditLogger, logger)
	teacherHandler := teachers.NewHandler(logger, teacherService, guard)

	courseRepo := courses.NewRepository(pool)
	courseService := courses.NewService(courseRepo, auditLogger, logger)
	courseHandler := courses.NewHandler(logger, courseService, guard)

	reportCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)
	reportService := reports.NewService(reports.NewRepository(pool), reportCache, logger)
	pdfExporter := &export.PDFExporter{Endpoint: cfg.GotenbergURL}
	reportHandler := reports.NewHandler(logger, reportService, pdfExporter, guard)

	gradeService := grades.NewService(grades.NewRepository(pool), courseRepo, auditLogger, reportService, logger)
	gradeHandler := grades.NewHandler(logger, gradeService, guard)

	attendanceService := attendance.NewService(attendance.NewRepository(pool), auditLogger, reportService, logger)
	attendanceHandler := attendance.NewHandler(logger, attendanceService, guard)

	announcementService := announcements.NewService(announcements.NewRepository(pool), jobClient, idemStore, auditLogger, logger)
	announcementHandler := announcements.NewHandler(logger, announcementService, guard)

	messagingService := messaging.NewService(messaging.NewRepository(pool), logger)
	messagingHandler := messaging.NewHandler(logger, messagingService, guard)

	rbacHandler := rbac.NewHandler(logger, rbacService, guard)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	jobHandler := jobs.NewHandler(inspector, logger)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessions,
		CSRFManager:    csrf,
		RBACMiddleware: guard,

		AuthHandler:         authHandler,
		BranchHandler:       branchHandler,
		UserHandler:         userHandler,
		StudentHandler:      studentHandler,
		TeacherHandler:      teacherHandler,
		CourseHandler:       courseHandler,
		GradeHandler:        gradeHandler,
		AttendanceHandler:   attendanceHandler,
		AnnouncementHandler: announcementHandler,
		MessagingHandler:    messagingHandler,
		ReportHandler:       reportHandler,
		RBACHandler:         rbacHandler,
		JobHandler:          jobHandler,
		Metrics:             metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", slog.Any("error", err))
	}
}
