package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

// These cover handler-level validation that rejects before reaching the
// service, so a nil service is safe.

func TestRegisterPasswordMismatch(t *testing.T) {
	body := `{"name":"A","email":"a@x.com","password":"secret123","confirmPassword":"other","phoneNumber":"1"}`
	req := httptest.NewRequest("POST", "/v1/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	Register(nil, zap.NewNop().Sugar())(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	var resp struct {
		Message string `json:"message"`
		Path    string `json:"path"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Message != "Error.PasswordsDoNotMatch" || resp.Path != "confirmPassword" {
		t.Fatalf("unexpected body %+v", resp)
	}
}

func TestRegisterMissingFields(t *testing.T) {
	req := httptest.NewRequest("POST", "/v1/auth/register", strings.NewReader(`{"email":"a@x.com"}`))
	rec := httptest.NewRecorder()
	Register(nil, zap.NewNop().Sugar())(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestVerifyTwoFactorRejectsUnknownMethod(t *testing.T) {
	body := `{"tempSessionId":"x","token":"123456","method":"sms"}`
	req := httptest.NewRequest("POST", "/v1/auth/2fa/verify", strings.NewReader(body))
	rec := httptest.NewRecorder()
	VerifyTwoFactor(nil, zap.NewNop().Sugar())(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSendOTPRequiresType(t *testing.T) {
	req := httptest.NewRequest("POST", "/v1/auth/otp", strings.NewReader(`{"email":"a@x.com"}`))
	rec := httptest.NewRecorder()
	SendOTP(nil, zap.NewNop().Sugar())(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
