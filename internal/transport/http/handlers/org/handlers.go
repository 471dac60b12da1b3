package orghandler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	domainauth "calibra/internal/domain/auth"
	"calibra/internal/domain/org"
	"calibra/internal/transport/http/api"
	"calibra/internal/transport/http/middleware"
)

type Handler struct {
	Store *org.Store
}

func NewHandler(store *org.Store) *Handler {
	return &Handler{Store: store}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	view := middleware.RequirePermission(domainauth.PermCalibrationView)
	r.With(view).Get("/org/departments", h.handleListDepartments)
	r.With(view).Get("/org/employees", h.handleListEmployees)
}

func (h *Handler) handleListDepartments(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}
	departments, err := h.Store.ListDepartments(r.Context(), user.TenantID)
	if err != nil {
		slog.Error("list departments failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "failed to list departments", requestID)
		return
	}
	api.Success(w, departments, requestID)
}

// handleListEmployees respects the caller's department scope: area managers
// only see their subtree.
func (h *Handler) handleListEmployees(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}
	scope, err := org.ScopeFor(r.Context(), h.Store, user.TenantID, user.DepartmentID, domainauth.IsScopedRole(user.Role))
	if err != nil {
		slog.Error("scope resolution failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "scope_error", "failed to resolve caller scope", requestID)
		return
	}
	employees, err := h.Store.ListEmployees(r.Context(), user.TenantID, scope.Departments)
	if err != nil {
		slog.Error("list employees failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "failed to list employees", requestID)
		return
	}
	api.Success(w, employees, requestID)
}
