package audithandler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"calibra/internal/domain/audit"
	domainauth "calibra/internal/domain/auth"
	"calibra/internal/transport/http/api"
	"calibra/internal/transport/http/middleware"
	"calibra/internal/transport/http/shared"
)

type Handler struct {
	Audit *audit.Service
}

func NewHandler(auditSvc *audit.Service) *Handler {
	return &Handler{Audit: auditSvc}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(middleware.RequirePermission(domainauth.PermAuditRead)).Get("/audit/events", h.handleList)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}

	filter := audit.Filter{
		Action:     r.URL.Query().Get("action"),
		EntityType: r.URL.Query().Get("entityType"),
		ActorEmail: r.URL.Query().Get("actorEmail"),
	}
	page := shared.ParsePagination(r, 50, 500)

	total, err := h.Audit.Count(r.Context(), user.TenantID, filter)
	if err != nil {
		slog.Error("audit count failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "failed to query audit events", requestID)
		return
	}
	events, err := h.Audit.List(r.Context(), user.TenantID, filter, page.Limit, page.Offset)
	if err != nil {
		slog.Error("audit list failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "failed to query audit events", requestID)
		return
	}

	api.Success(w, map[string]any{"items": events, "total": total, "limit": page.Limit, "offset": page.Offset}, requestID)
}
