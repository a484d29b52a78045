package messaging

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/scholaris/scholaris/internal/platform/httpx"
	"github.com/scholaris/scholaris/internal/rbac"
	"github.com/scholaris/scholaris/internal/shared"
)

type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	rbac     rbac.Middleware
}

func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
		rbac:     rbac,
	}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.PermMessagesUse))
		r.Get("/conversations", h.inbox)
		r.Get("/conversations/{id}", h.messages)
		r.Post("/conversations/{id}/read", h.markRead)
		r.Post("/", h.send)
		r.Get("/unread", h.unread)
	})
}

func (h *Handler) inbox(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.CurrentUserID(r.Context())
	if !ok {
		httpx.JSON(w, http.StatusUnauthorized, httpx.Envelope{Success: false, Message: "authentication required"})
		return
	}
	q := shared.ParsePageQuery(r)
	items, pagination, err := h.service.Inbox(r.Context(), userID, q)
	if err != nil {
		h.logger.Error("list conversations", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.List(w, items, pagination)
}

func (h *Handler) send(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.CurrentUserID(r.Context())
	if !ok {
		httpx.JSON(w, http.StatusUnauthorized, httpx.Envelope{Success: false, Message: "authentication required"})
		return
	}
	var req SendMessageInput
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, httpx.Validation("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, httpx.ValidationError(err))
		return
	}
	msg, err := h.service.Send(r.Context(), userID, req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Created(w, msg)
}

func (h *Handler) messages(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.CurrentUserID(r.Context())
	if !ok {
		httpx.JSON(w, http.StatusUnauthorized, httpx.Envelope{Success: false, Message: "authentication required"})
		return
	}
	id, err := parseID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	q := shared.ParsePageQuery(r)
	items, pagination, err := h.service.Messages(r.Context(), userID, id, q)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.List(w, items, pagination)
}

func (h *Handler) markRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.CurrentUserID(r.Context())
	if !ok {
		httpx.JSON(w, http.StatusUnauthorized, httpx.Envelope{Success: false, Message: "authentication required"})
		return
	}
	id, err := parseID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	marked, err := h.service.MarkRead(r.Context(), userID, id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, map[string]int{"marked_read": marked})
}

func (h *Handler) unread(w http.ResponseWriter, r *http.Request) {
	userID, ok := shared.CurrentUserID(r.Context())
	if !ok {
		httpx.JSON(w, http.StatusUnauthorized, httpx.Envelope{Success: false, Message: "authentication required"})
		return
	}
	total, err := h.service.UnreadTotal(r.Context(), userID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, map[string]int{"unread": total})
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, httpx.Validation("invalid id")
	}
	return id, nil
}
