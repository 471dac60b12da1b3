package calibrationhandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"calibra/internal/domain/audit"
	domainauth "calibra/internal/domain/auth"
	"calibra/internal/domain/calibration"
	"calibra/internal/domain/org"
	"calibra/internal/platform/metrics"
	"calibra/internal/transport/http/api"
	"calibra/internal/transport/http/middleware"
	"calibra/internal/transport/http/shared"
)

// AuditRecorder is satisfied by the audit service; handlers record events
// best-effort after the mutating call succeeds.
type AuditRecorder interface {
	Record(ctx context.Context, tenantID, actorEmail, action, entityType, entityID, requestID string, before, after any) error
}

type Handler struct {
	Service   *calibration.Service
	Org       *org.Store
	Audit     AuditRecorder
	Metrics   *metrics.Collector
	Tolerance float64
}

func NewHandler(service *calibration.Service, orgStore *org.Store, auditSvc AuditRecorder, collector *metrics.Collector, tolerancePct float64) *Handler {
	return &Handler{Service: service, Org: orgStore, Audit: auditSvc, Metrics: collector, Tolerance: tolerancePct}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	view := middleware.RequirePermission(domainauth.PermCalibrationView)
	manage := middleware.RequirePermission(domainauth.PermCalibrationManage)

	r.Route("/calibration", func(r chi.Router) {
		r.With(manage).Post("/cycles", h.handleCreateCycle)
		r.With(view).Get("/cycles", h.handleListCycles)
		r.With(manage).Post("/cycles/{cycleID}/ratings", h.handleUpsertRating)
		r.With(view).Get("/cycles/{cycleID}/ratings", h.handleListRatings)

		r.With(manage).Post("/sessions", h.handleCreateSession)
		r.With(view).Get("/sessions", h.handleListSessions)
		r.With(view).Get("/sessions/{sessionID}", h.handleGetSession)
		r.With(manage).Post("/sessions/{sessionID}/activate", h.handleActivateSession)
		r.With(manage).Post("/sessions/{sessionID}/participants", h.handleAddParticipant)
		r.With(view).Get("/sessions/{sessionID}/participants", h.handleListParticipants)
		r.With(view).Post("/sessions/{sessionID}/adjustments", h.handleProposeAdjustment)
		r.With(view).Get("/sessions/{sessionID}/adjustments", h.handleListAdjustments)
		r.With(view).Get("/sessions/{sessionID}/distribution", h.handleDistribution)
		r.With(manage).Post("/sessions/{sessionID}/close", h.handleCloseSession)
	})
}

// callerScope resolves identity plus the department-subtree scope capability
// injected into every service call.
func (h *Handler) callerScope(w http.ResponseWriter, r *http.Request) (domainauth.UserContext, org.Scope, bool) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return domainauth.UserContext{}, org.Scope{}, false
	}
	scope, err := org.ScopeFor(r.Context(), h.Org, user.TenantID, user.DepartmentID, domainauth.IsScopedRole(user.Role))
	if err != nil {
		slog.Warn("scope resolution failed", "err", err)
		api.Fail(w, http.StatusInternalServerError, "scope_error", "failed to resolve caller scope", middleware.GetRequestID(r.Context()))
		return domainauth.UserContext{}, org.Scope{}, false
	}
	return user, scope, true
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())
	if verr, ok := calibration.AsValidation(err); ok {
		api.FailDetails(w, http.StatusUnprocessableEntity, "validation_failed", "validation failed", verr.Issues, requestID)
		return
	}
	switch {
	case errors.Is(err, calibration.ErrSessionNotFound),
		errors.Is(err, calibration.ErrRatingNotFound),
		errors.Is(err, calibration.ErrCycleNotFound),
		errors.Is(err, calibration.ErrEmployeeNotFound),
		errors.Is(err, calibration.ErrAdjustmentNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), requestID)
	case errors.Is(err, calibration.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", "caller is not allowed to act on this resource", requestID)
	case errors.Is(err, calibration.ErrSessionNotOpen),
		errors.Is(err, calibration.ErrSessionNotDraft):
		api.Fail(w, http.StatusConflict, "invalid_state", err.Error(), requestID)
	case errors.Is(err, calibration.ErrCommitFailed):
		slog.Error("close commit failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "commit_failed", "session close failed and was rolled back", requestID)
	default:
		slog.Error("calibration request failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "request failed", requestID)
	}
}

func (h *Handler) audit(r *http.Request, tenantID, actorEmail, action, entityType, entityID string, before, after any) {
	if h.Audit == nil {
		return
	}
	requestID := middleware.GetRequestID(r.Context())
	if err := h.Audit.Record(r.Context(), tenantID, actorEmail, action, entityType, entityID, requestID, before, after); err != nil {
		slog.Warn("audit record failed", "action", action, "entityId", entityID, "err", err)
	}
}

type cyclePayload struct {
	Name      string `json:"name"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

func (h *Handler) handleCreateCycle(w http.ResponseWriter, r *http.Request) {
	user, _, ok := h.callerScope(w, r)
	if !ok {
		return
	}
	var payload cyclePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	start, err1 := time.Parse("2006-01-02", payload.StartDate)
	end, err2 := time.Parse("2006-01-02", payload.EndDate)
	if err1 != nil || err2 != nil {
		api.Fail(w, http.StatusUnprocessableEntity, "validation_failed", "startDate and endDate must be YYYY-MM-DD", middleware.GetRequestID(r.Context()))
		return
	}

	cycle, err := h.Service.CreateCycle(r.Context(), user, calibration.Cycle{Name: payload.Name, StartDate: start, EndDate: end})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	api.Created(w, cycle, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListCycles(w http.ResponseWriter, r *http.Request) {
	user, _, ok := h.callerScope(w, r)
	if !ok {
		return
	}
	cycles, err := h.Service.ListCycles(r.Context(), user)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	api.Success(w, cycles, middleware.GetRequestID(r.Context()))
}

type ratingPayload struct {
	EmployeeID      string  `json:"employeeId"`
	CalculatedScore float64 `json:"calculatedScore"`
	CalculatedLevel string  `json:"calculatedLevel"`
}

func (h *Handler) handleUpsertRating(w http.ResponseWriter, r *http.Request) {
	user, _, ok := h.callerScope(w, r)
	if !ok {
		return
	}
	var payload ratingPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	rating, err := h.Service.UpsertRating(r.Context(), user, calibration.Rating{
		CycleID:         chi.URLParam(r, "cycleID"),
		EmployeeID:      payload.EmployeeID,
		CalculatedScore: payload.CalculatedScore,
		CalculatedLevel: payload.CalculatedLevel,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.audit(r, user.TenantID, user.Email, audit.ActionRatingIngested, "performance_rating", rating.ID, nil, rating)
	api.Created(w, rating, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListRatings(w http.ResponseWriter, r *http.Request) {
	_, scope, ok := h.callerScope(w, r)
	if !ok {
		return
	}
	ratings, err := h.Service.ListRatings(r.Context(), scope, chi.URLParam(r, "cycleID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	api.Success(w, ratings, middleware.GetRequestID(r.Context()))
}

type sessionPayload struct {
	CycleID                  string             `json:"cycleId"`
	Name                     string             `json:"name"`
	Description              string             `json:"description"`
	DepartmentIDs            []string           `json:"departmentIds"`
	EnableForcedDistribution bool               `json:"enableForcedDistribution"`
	DistributionTargets      map[string]float64 `json:"distributionTargets"`
	ScheduledAt              string             `json:"scheduledAt"`
}

func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	user, scope, ok := h.callerScope(w, r)
	if !ok {
		return
	}
	var payload sessionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	session := calibration.Session{
		CycleID:                  payload.CycleID,
		Name:                     payload.Name,
		Description:              payload.Description,
		DepartmentIDs:            payload.DepartmentIDs,
		EnableForcedDistribution: payload.EnableForcedDistribution,
		DistributionTargets:      payload.DistributionTargets,
	}
	if payload.ScheduledAt != "" {
		parsed, err := time.Parse(time.RFC3339, payload.ScheduledAt)
		if err != nil {
			api.Fail(w, http.StatusUnprocessableEntity, "validation_failed", "scheduledAt must be RFC3339", middleware.GetRequestID(r.Context()))
			return
		}
		session.ScheduledAt = &parsed
	}

	created, err := h.Service.CreateSession(r.Context(), scope, user, session)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.audit(r, user.TenantID, user.Email, audit.ActionSessionCreated, "calibration_session", created.ID, nil, created)
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	_, scope, ok := h.callerScope(w, r)
	if !ok {
		return
	}
	filter := calibration.SessionFilter{
		Status:  r.URL.Query().Get("status"),
		CycleID: r.URL.Query().Get("cycleId"),
	}
	sessions, err := h.Service.ListSessions(r.Context(), scope, filter)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	api.Success(w, sessions, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	_, scope, ok := h.callerScope(w, r)
	if !ok {
		return
	}
	session, err := h.Service.GetSession(r.Context(), scope, chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	api.Success(w, session, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleActivateSession(w http.ResponseWriter, r *http.Request) {
	user, scope, ok := h.callerScope(w, r)
	if !ok {
		return
	}
	session, err := h.Service.ActivateSession(r.Context(), scope, chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.audit(r, user.TenantID, user.Email, audit.ActionSessionActivated, "calibration_session", session.ID, nil, map[string]string{"status": session.Status})
	api.Success(w, session, middleware.GetRequestID(r.Context()))
}

type participantPayload struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (h *Handler) handleAddParticipant(w http.ResponseWriter, r *http.Request) {
	user, scope, ok := h.callerScope(w, r)
	if !ok {
		return
	}
	var payload participantPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	participant, err := h.Service.AddParticipant(r.Context(), scope, chi.URLParam(r, "sessionID"), payload.Email, payload.Role)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.audit(r, user.TenantID, user.Email, audit.ActionParticipantAdded, "calibration_session", participant.SessionID, nil, participant)
	api.Created(w, participant, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListParticipants(w http.ResponseWriter, r *http.Request) {
	_, scope, ok := h.callerScope(w, r)
	if !ok {
		return
	}
	participants, err := h.Service.ListParticipants(r.Context(), scope, chi.URLParam(r, "sessionID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	api.Success(w, participants, middleware.GetRequestID(r.Context()))
}

type adjustmentPayload struct {
	RatingID          string   `json:"ratingId"`
	NewFinalScore     *float64 `json:"newFinalScore"`
	NewPotentialScore *float64 `json:"newPotentialScore"`
	Justification     string   `json:"justification"`
}

func (h *Handler) handleProposeAdjustment(w http.ResponseWriter, r *http.Request) {
	user, scope, ok := h.callerScope(w, r)
	if !ok {
		return
	}
	var payload adjustmentPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	adjustment, preview, err := h.Service.ProposeAdjustment(r.Context(), scope, user, calibration.ProposeAdjustmentInput{
		SessionID:         chi.URLParam(r, "sessionID"),
		RatingID:          payload.RatingID,
		NewFinalScore:     payload.NewFinalScore,
		NewPotentialScore: payload.NewPotentialScore,
		Justification:     payload.Justification,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.audit(r, user.TenantID, user.Email, audit.ActionAdjustmentProposed, "calibration_adjustment", adjustment.ID,
		map[string]any{"finalScore": adjustment.PreviousFinalScore, "potentialScore": adjustment.PreviousPotentialScore, "nineBox": adjustment.PreviousNineBox},
		map[string]any{"finalScore": adjustment.NewFinalScore, "potentialScore": adjustment.NewPotentialScore, "nineBox": adjustment.NewNineBox, "delta": preview.Delta})
	api.Created(w, map[string]any{"adjustment": adjustment, "preview": preview}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListAdjustments(w http.ResponseWriter, r *http.Request) {
	_, scope, ok := h.callerScope(w, r)
	if !ok {
		return
	}
	page := shared.ParsePagination(r, 50, 200)
	adjustments, total, err := h.Service.ListAdjustments(r.Context(), scope, chi.URLParam(r, "sessionID"), page.Limit, page.Offset)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	api.Success(w, map[string]any{"items": adjustments, "total": total}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDistribution(w http.ResponseWriter, r *http.Request) {
	_, scope, ok := h.callerScope(w, r)
	if !ok {
		return
	}
	result, err := h.Service.ValidateSessionDistribution(r.Context(), scope, chi.URLParam(r, "sessionID"), h.Tolerance)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	api.Success(w, result, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	user, scope, ok := h.callerScope(w, r)
	if !ok {
		return
	}
	sessionID := chi.URLParam(r, "sessionID")
	result, err := h.Service.CloseSession(r.Context(), scope, sessionID, h.Tolerance)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if h.Metrics != nil {
		h.Metrics.RecordCommit(result.AppliedCount)
	}

	// The close is durable at this point. Audit and artifact generation are
	// side channels whose failure is logged, never surfaced.
	h.audit(r, user.TenantID, user.Email, audit.ActionSessionClosed, "calibration_session", sessionID,
		map[string]string{"status": calibration.SessionStatusInProgress},
		map[string]any{"status": calibration.SessionStatusClosed, "appliedCount": result.AppliedCount})
	if path, err := h.Service.GenerateCloseReport(r.Context(), user.TenantID, sessionID); err != nil {
		slog.Warn("close report generation failed", "sessionId", sessionID, "err", err)
	} else {
		slog.Info("close report generated", "sessionId", sessionID, "path", path)
	}

	api.Success(w, result, middleware.GetRequestID(r.Context()))
}
