package authhandler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"calibra/internal/auth"
	domainauth "calibra/internal/domain/auth"
	"calibra/internal/transport/http/api"
	"calibra/internal/transport/http/middleware"
)

type Handler struct {
	Store     *domainauth.Store
	JWTSecret string
	TokenTTL  time.Duration
}

func NewHandler(store *domainauth.Store, jwtSecret string, tokenTTL time.Duration) *Handler {
	return &Handler{Store: store, JWTSecret: jwtSecret, TokenTTL: tokenTTL}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/login", h.handleLogin)
	r.Get("/auth/me", h.handleMe)
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Role      string    `json:"role"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	var payload loginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Email == "" || payload.Password == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "email and password are required", requestID)
		return
	}

	user, err := h.Store.FindActiveUserByEmail(r.Context(), payload.Email)
	if err != nil {
		// Identical response for unknown user and bad password.
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "invalid credentials", requestID)
		return
	}
	if err := auth.CheckPassword(user.PasswordHash, payload.Password); err != nil {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "invalid credentials", requestID)
		return
	}

	expiresAt := time.Now().Add(h.TokenTTL)
	token, err := auth.GenerateToken(h.JWTSecret, auth.Claims{
		UserID:       user.ID,
		TenantID:     user.TenantID,
		Role:         user.Role,
		DepartmentID: user.DepartmentID,
		Email:        user.Email,
	}, h.TokenTTL)
	if err != nil {
		slog.Error("token generation failed", "err", err, "requestId", requestID)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "login failed", requestID)
		return
	}

	if err := h.Store.UpdateLastLogin(r.Context(), user.ID); err != nil {
		slog.Warn("last login update failed", "userId", user.ID, "err", err)
	}

	api.Success(w, loginResponse{Token: token, ExpiresAt: expiresAt, Role: user.Role}, requestID)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", requestID)
		return
	}
	api.Success(w, user, requestID)
}
