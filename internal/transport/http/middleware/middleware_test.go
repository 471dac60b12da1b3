package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"calibra/internal/auth"
	domainauth "calibra/internal/domain/auth"
)

func okHandler(t *testing.T, hit *bool) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*hit = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequestIDGeneratedAndEchoed(t *testing.T) {
	var captured string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if captured == "" {
		t.Fatal("expected a generated request id in context")
	}
	if rec.Header().Get("X-Request-ID") != captured {
		t.Fatalf("response header %q does not match context id %q", rec.Header().Get("X-Request-ID"), captured)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "client-supplied")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if captured != "client-supplied" {
		t.Fatalf("expected client id to propagate, got %q", captured)
	}
}

func TestAuthPopulatesUserContext(t *testing.T) {
	const secret = "test-secret"
	token, err := auth.GenerateToken(secret, auth.Claims{
		UserID:   "u1",
		TenantID: "t1",
		Role:     domainauth.RoleHR,
		Email:    "hr@acme.test",
	}, time.Minute)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	var got domainauth.UserContext
	var ok bool
	handler := Auth(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = GetUser(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if !ok {
		t.Fatal("expected identity in context")
	}
	if got.TenantID != "t1" || got.Role != domainauth.RoleHR || got.Email != "hr@acme.test" {
		t.Fatalf("unexpected identity: %+v", got)
	}

	// Garbage tokens pass through anonymous rather than failing the request.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	ok = false
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if ok {
		t.Fatal("invalid token must not resolve an identity")
	}
}

func TestRequirePermission(t *testing.T) {
	var hit bool
	handler := RequirePermission(domainauth.PermCalibrationManage)(okHandler(t, &hit))

	// Anonymous request.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	if rec.Code != http.StatusUnauthorized || hit {
		t.Fatalf("expected 401 without identity, got %d hit=%v", rec.Code, hit)
	}

	// Resolved identity lacking the permission.
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req = req.WithContext(WithUser(req.Context(), domainauth.UserContext{Role: domainauth.RoleEmployee}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden || hit {
		t.Fatalf("expected 403 for employee, got %d hit=%v", rec.Code, hit)
	}

	// HR passes.
	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req = req.WithContext(WithUser(req.Context(), domainauth.UserContext{Role: domainauth.RoleHR}))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || !hit {
		t.Fatalf("expected 200 for HR, got %d hit=%v", rec.Code, hit)
	}
}
