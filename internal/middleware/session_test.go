package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"donatrack/internal/domain"
)

var testUser = domain.User{ID: 7, Username: "maria", Role: domain.UserRoleStaff}

func TestSessionIssueAndVerify(t *testing.T) {
	m := NewSessionManager("test-secret", time.Hour)

	token, err := m.Issue(testUser)
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}
	identity, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if identity.UserID != 7 || identity.Username != "maria" || identity.Role != domain.UserRoleStaff {
		t.Fatalf("Verify() = %+v, want 7/maria/staff", identity)
	}
}

func TestSessionVerifyWrongSecret(t *testing.T) {
	token, err := NewSessionManager("secret-a", time.Hour).Issue(testUser)
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}
	if _, err := NewSessionManager("secret-b", time.Hour).Verify(token); err == nil {
		t.Fatalf("Verify() accepted a token signed with another secret")
	}
}

func TestSessionVerifyExpired(t *testing.T) {
	m := NewSessionManager("test-secret", -time.Minute)
	token, err := m.Issue(testUser)
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}
	if _, err := m.Verify(token); err == nil {
		t.Fatalf("Verify() accepted an expired token")
	}
}

func TestSessionsMiddlewareLoadsIdentity(t *testing.T) {
	m := NewSessionManager("test-secret", time.Hour)
	token, err := m.Issue(testUser)
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	var got Identity
	var ok bool
	handler := m.Sessions(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = IdentityFromContext(r.Context())
	}))

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !ok || got.Username != "maria" {
		t.Fatalf("identity not loaded from cookie: %+v ok=%v", got, ok)
	}

	// Tampered cookie: no identity, request still passes through.
	ok = false
	req = httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: token + "x"})
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if ok {
		t.Fatalf("identity loaded from a tampered cookie")
	}
}

func TestRequireLoginRedirects(t *testing.T) {
	handler := RequireLogin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/new", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusSeeOther)
	}
	if loc := rr.Header().Get("Location"); loc != "/login?next=%2Fnew" {
		t.Fatalf("Location = %q, want /login?next=%%2Fnew", loc)
	}

	req = httptest.NewRequest("GET", "/new", nil)
	req = req.WithContext(ContextWithIdentity(req.Context(), Identity{UserID: 1, Username: "maria", Role: domain.UserRoleStaff}))
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("authenticated request status = %d, want 200", rr.Code)
	}
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(domain.UserRoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/admin/delete/1", nil)
	req = req.WithContext(ContextWithIdentity(req.Context(), Identity{UserID: 1, Username: "maria", Role: domain.UserRoleStaff}))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("staff delete status = %d, want 403", rr.Code)
	}

	req = httptest.NewRequest("POST", "/admin/delete/1", nil)
	req = req.WithContext(ContextWithIdentity(req.Context(), Identity{UserID: 2, Username: "root", Role: domain.UserRoleAdmin}))
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("admin delete status = %d, want 200", rr.Code)
	}
}
