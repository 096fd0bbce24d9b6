package guard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"qrorder/internal/auth"
)

type stubPerms struct {
	allow bool
	err   error

	roleID uint
	path   string
	method string
}

func (s *stubPerms) HasPermission(_ context.Context, roleID uint, path, method string) (bool, error) {
	s.roleID, s.path, s.method = roleID, path, method
	return s.allow, s.err
}

func authedRequest(roleID uint, roleName string) *http.Request {
	req := httptest.NewRequest("GET", "/brands", nil)
	claims := &auth.AccessClaims{UserID: 7, RoleID: roleID, RoleName: roleName}
	return req.WithContext(auth.WithClaims(req.Context(), claims))
}

func TestAuthorizeAllows(t *testing.T) {
	perms := &stubPerms{allow: true}
	called := false
	h := Authorize(perms, zap.NewNop().Sugar(), "GET", "/brands", func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, authedRequest(2, "ADMIN"))
	if !called {
		t.Fatal("handler should run when the permission exists")
	}
	if perms.roleID != 2 || perms.path != "/brands" || perms.method != "GET" {
		t.Fatalf("wrong lookup args %+v", perms)
	}
}

func TestAuthorizeDenies(t *testing.T) {
	perms := &stubPerms{allow: false}
	h := Authorize(perms, zap.NewNop().Sugar(), "DELETE", "/brands/{id}", func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, authedRequest(4, "CUSTOMER"))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	var body struct {
		Message string `json:"message"`
		Details struct {
			RequiredPermission string `json:"requiredPermission"`
			UserRole           string `json:"userRole"`
		} `json:"details"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Details.RequiredPermission != "DELETE /brands/{id}" || body.Details.UserRole != "CUSTOMER" {
		t.Fatalf("unexpected detail %+v", body)
	}
}

func TestAuthorizeSkipsUnauthenticated(t *testing.T) {
	perms := &stubPerms{allow: false}
	called := false
	h := Authorize(perms, zap.NewNop().Sugar(), "GET", "/brands", func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/brands", nil))
	if !called {
		t.Fatal("requests without claims pass through; authentication owns that failure")
	}
}
