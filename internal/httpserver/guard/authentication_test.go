package guard

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"qrorder/internal/auth"
)

type stubStrategy struct {
	name   string
	claims *auth.AccessClaims
	err    error
	calls  int
}

func (s *stubStrategy) Name() string { return s.name }
func (s *stubStrategy) Authenticate(*http.Request) (*auth.AccessClaims, error) {
	s.calls++
	return s.claims, s.err
}

func runGuard(t *testing.T, mw func(http.Handler) http.Handler, req *http.Request) (*httptest.ResponseRecorder, *auth.AccessClaims) {
	t.Helper()
	var got *auth.AccessClaims
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec, got
}

func TestAuthenticationORFirstSuccessWins(t *testing.T) {
	ok := &stubStrategy{name: "Bearer", claims: &auth.AccessClaims{UserID: 7}}
	never := &stubStrategy{name: "ApiKey", err: errors.New("should not run")}
	mw := Authentication(ConditionOR, ok, never)

	rec, claims := runGuard(t, mw, httptest.NewRequest("GET", "/x", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if claims == nil || claims.UserID != 7 {
		t.Fatalf("claims not attached: %+v", claims)
	}
	if never.calls != 0 {
		t.Fatal("OR must stop at the first passing strategy")
	}
}

func TestAuthenticationORAllFail(t *testing.T) {
	a := &stubStrategy{name: "Bearer", err: errors.New("no access token provided")}
	b := &stubStrategy{name: "ApiKey", err: errors.New("API key is missing")}
	mw := Authentication(ConditionOR, a, b)

	rec, _ := runGuard(t, mw, httptest.NewRequest("GET", "/x", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	var body struct {
		Message string `json:"message"`
		Errors  []struct {
			Type  string `json:"type"`
			Error string `json:"error"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Errors) != 2 {
		t.Fatalf("expected both failures reported, got %+v", body)
	}
}

func TestAuthenticationANDRequiresAll(t *testing.T) {
	ok := &stubStrategy{name: "Bearer", claims: &auth.AccessClaims{UserID: 7}}
	fail := &stubStrategy{name: "ApiKey", err: errors.New("invalid API key")}
	rec, _ := runGuard(t, Authentication(ConditionAND, ok, fail), httptest.NewRequest("GET", "/x", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	both := Authentication(ConditionAND, ok, &stubStrategy{name: "ApiKey"})
	rec, claims := runGuard(t, both, httptest.NewRequest("GET", "/x", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if claims == nil || claims.UserID != 7 {
		t.Fatal("bearer claims should be attached even when combined with an api key")
	}
}

func TestBearerStrategy(t *testing.T) {
	tokens := auth.NewTokenService(auth.TokenConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Minute,
	})
	s := NewBearerStrategy(tokens)

	req := httptest.NewRequest("GET", "/x", nil)
	if _, err := s.Authenticate(req); err == nil {
		t.Fatal("missing header must fail")
	}

	req.Header.Set("Authorization", "Bearer not-a-token")
	if _, err := s.Authenticate(req); err == nil {
		t.Fatal("garbage token must fail")
	}

	tok, err := tokens.SignAccessToken(7, 3, 2, "ADMIN")
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	claims, err := s.Authenticate(req)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if claims.UserID != 7 || claims.RoleName != "ADMIN" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestAPIKeyStrategy(t *testing.T) {
	s := NewAPIKeyStrategy("s3cret")

	req := httptest.NewRequest("GET", "/x", nil)
	if _, err := s.Authenticate(req); err == nil {
		t.Fatal("missing key must fail")
	}
	req.Header.Set("X-API-Key", "wrong")
	if _, err := s.Authenticate(req); err == nil {
		t.Fatal("wrong key must fail")
	}
	req.Header.Set("X-API-Key", "s3cret")
	claims, err := s.Authenticate(req)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if claims != nil {
		t.Fatal("api key auth carries no user claims")
	}
}
