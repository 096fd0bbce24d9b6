package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"qrorder/internal/auth"
	"qrorder/internal/service"
)

type registerReq struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	PhoneNumber     string `json:"phoneNumber"`
	Code            string `json:"code"`
}

func Register(svc *service.AuthService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req.Email = strings.TrimSpace(strings.ToLower(req.Email))
		if req.Name == "" || req.Email == "" || req.Password == "" || req.PhoneNumber == "" {
			http.Error(w, "name, email, password and phoneNumber are required", http.StatusBadRequest)
			return
		}
		if req.Password != req.ConfirmPassword {
			respondStatusJSON(w, http.StatusUnprocessableEntity, &auth.Error{
				Message: "Error.PasswordsDoNotMatch", Path: "confirmPassword",
			})
			return
		}
		user, err := svc.Register(r.Context(), service.RegisterRequest{
			Name:        req.Name,
			Email:       req.Email,
			Password:    req.Password,
			PhoneNumber: req.PhoneNumber,
			Code:        req.Code,
		})
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondStatusJSON(w, http.StatusCreated, user)
	}
}

type sendOtpReq struct {
	Email         string `json:"email"`
	Type          string `json:"type"`
	TempSessionID string `json:"tempSessionId"`
}

func SendOTP(svc *service.AuthService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sendOtpReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Type == "" {
			http.Error(w, "type is required", http.StatusBadRequest)
			return
		}
		err := svc.SendOTP(r.Context(), service.SendOTPRequest{
			Email:         strings.TrimSpace(strings.ToLower(req.Email)),
			Type:          req.Type,
			TempSessionID: req.TempSessionID,
		})
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, map[string]any{"message": "OTP sent successfully"})
	}
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func Login(svc *service.AuthService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		res, err := svc.Login(r.Context(), service.LoginRequest{
			Email:     strings.TrimSpace(strings.ToLower(req.Email)),
			Password:  req.Password,
			UserAgent: r.UserAgent(),
			IP:        clientIP(r),
		})
		if err != nil {
			respondError(w, lg, err)
			return
		}
		if res.Requires2FA {
			respondJSON(w, map[string]any{"requires2FA": true, "tempSessionId": res.TempSessionID})
			return
		}
		respondJSON(w, res.Tokens)
	}
}

type refreshReq struct {
	RefreshToken string `json:"refreshToken"`
}

func RefreshToken(svc *service.AuthService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refreshReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		tokens, err := svc.RefreshToken(r.Context(), service.RefreshRequest{
			RefreshToken: req.RefreshToken,
			UserAgent:    r.UserAgent(),
			IP:           clientIP(r),
		})
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, tokens)
	}
}

func Logout(svc *service.AuthService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refreshReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := svc.Logout(r.Context(), req.RefreshToken); err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, map[string]any{"message": "Logged out successfully"})
	}
}

type forgotPasswordReq struct {
	Email              string `json:"email"`
	Code               string `json:"code"`
	NewPassword        string `json:"newPassword"`
	ConfirmNewPassword string `json:"confirmNewPassword"`
}

func ForgotPassword(svc *service.AuthService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req forgotPasswordReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.NewPassword != req.ConfirmNewPassword {
			respondStatusJSON(w, http.StatusUnprocessableEntity, &auth.Error{
				Message: "Error.PasswordsDoNotMatch", Path: "confirmNewPassword",
			})
			return
		}
		err := svc.ForgotPassword(r.Context(), service.ForgotPasswordRequest{
			Email:       strings.TrimSpace(strings.ToLower(req.Email)),
			Code:        req.Code,
			NewPassword: req.NewPassword,
		})
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, map[string]any{"message": "Password updated successfully"})
	}
}

func SetupTwoFactor(svc *service.AuthService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		setup, err := svc.SetupTwoFactorAuth(r.Context(), auth.UserID(r.Context()))
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, setup)
	}
}

type activateTwoFactorReq struct {
	TempID string `json:"tempId"`
	Token  string `json:"token"`
}

func ActivateTwoFactor(svc *service.AuthService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req activateTwoFactorReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := svc.ActivateTwoFactorAuth(r.Context(), auth.UserID(r.Context()), req.TempID, req.Token); err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, map[string]any{"success": true})
	}
}

type verifyTwoFactorReq struct {
	TempSessionID string `json:"tempSessionId"`
	Token         string `json:"token"`
	Method        string `json:"method"`
}

func VerifyTwoFactor(svc *service.AuthService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req verifyTwoFactorReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Method != "totp" && req.Method != "email" {
			http.Error(w, "method must be totp or email", http.StatusBadRequest)
			return
		}
		tokens, err := svc.VerifyTwoFactorAuth(r.Context(), service.VerifyTwoFactorRequest{
			TempSessionID: req.TempSessionID,
			Code:          req.Token,
			Method:        req.Method,
			UserAgent:     r.UserAgent(),
			IP:            clientIP(r),
		})
		if err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, tokens)
	}
}

type disableTwoFactorReq struct {
	Token string `json:"token"`
}

func DisableTwoFactor(svc *service.AuthService, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req disableTwoFactorReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := svc.DisableTwoFactorAuth(r.Context(), auth.UserID(r.Context()), req.Token); err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, map[string]any{"success": true})
	}
}
