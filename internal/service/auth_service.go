package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"qrorder/internal/auth"
	"qrorder/internal/models"
	"qrorder/internal/store"
)

// Narrow views over the stores; the GORM-backed implementations live in
// internal/store, tests substitute in-memory fakes.
type UserStore interface {
	FindByEmailWithRole(ctx context.Context, email string) (*models.User, error)
	FindByIDWithRole(ctx context.Context, id uint) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	UpdatePassword(ctx context.Context, id uint, hash string) error
	SetTOTPSecret(ctx context.Context, id uint, secret *string) error
}

type CodeStore interface {
	Upsert(ctx context.Context, email, codeType, code string, expiresAt time.Time) error
	Find(ctx context.Context, email, codeType string) (*models.VerificationCode, error)
	Delete(ctx context.Context, id uint) error
}

type DeviceStore interface {
	CreateDevice(ctx context.Context, d *models.Device) error
	DeactivateDevice(ctx context.Context, id uint) error
	CreateRefreshToken(ctx context.Context, rt *models.RefreshToken) error
	FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error)
	DeleteRefreshToken(ctx context.Context, token string) error
	RotateRefreshToken(ctx context.Context, oldToken string, next *models.RefreshToken, ip, userAgent string) error
}

type SessionStore interface {
	PutTempSecret(ctx context.Context, userID uint, secret string) (string, error)
	GetTempSecret(ctx context.Context, tempID string) (*store.TempSecret, error)
	DeleteTempSecret(ctx context.Context, tempID string) error
	PutTempSession(ctx context.Context, userID uint) (string, error)
	GetTempSession(ctx context.Context, tempSessionID string) (*store.TempSession, error)
	DeleteTempSession(ctx context.Context, tempSessionID string) error
}

type RoleResolver interface {
	CustomerRoleID(ctx context.Context) (uint, error)
}

type Mailer interface {
	SendOTP(ctx context.Context, email, code string) error
}

type Auditor interface {
	Record(ctx context.Context, userID *uint, action string, meta map[string]any) error
}

type Config struct {
	// OTPTTL is the default verification-code lifetime; LOGIN_2FA codes
	// always live 5 minutes.
	OTPTTL time.Duration
}

// AuthService coordinates registration, OTP dispatch, login with the optional
// 2FA branch, refresh-token rotation, logout and TOTP enable/disable.
type AuthService struct {
	cfg      Config
	users    UserStore
	codes    CodeStore
	devices  DeviceStore
	sessions SessionStore
	roles    RoleResolver
	mailer   Mailer
	audits   Auditor
	tokens   *auth.TokenService
	totp     *auth.TOTPGenerator
	lg       *zap.SugaredLogger
}

type Deps struct {
	Users    UserStore
	Codes    CodeStore
	Devices  DeviceStore
	Sessions SessionStore
	Roles    RoleResolver
	Mailer   Mailer
	Audits   Auditor
	Tokens   *auth.TokenService
	TOTP     *auth.TOTPGenerator
	Logger   *zap.SugaredLogger
}

func NewAuthService(cfg Config, d Deps) *AuthService {
	if cfg.OTPTTL <= 0 {
		cfg.OTPTTL = 5 * time.Minute
	}
	return &AuthService{
		cfg:      cfg,
		users:    d.Users,
		codes:    d.Codes,
		devices:  d.Devices,
		sessions: d.Sessions,
		roles:    d.Roles,
		mailer:   d.Mailer,
		audits:   d.Audits,
		tokens:   d.Tokens,
		totp:     d.TOTP,
		lg:       d.Logger,
	}
}

type RegisterRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	PhoneNumber string `json:"phoneNumber"`
	Code        string `json:"code"`
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	vc, err := s.codes.Find(ctx, req.Email, models.VerificationRegister)
	if errors.Is(err, store.ErrNotFound) {
		return nil, auth.ErrInvalidOTP
	}
	if err != nil {
		return nil, err
	}
	if vc.Code != req.Code {
		return nil, auth.ErrInvalidOTP
	}
	if vc.ExpiresAt.Before(time.Now()) {
		return nil, auth.ErrOTPExpired
	}

	roleID, err := s.roles.CustomerRoleID(ctx)
	if err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:        req.Name,
		Email:       req.Email,
		Password:    hash,
		PhoneNumber: req.PhoneNumber,
		Status:      models.UserStatusActive,
		RoleID:      roleID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, auth.ErrEmailAlreadyExists
		}
		return nil, err
	}

	// The code is consumed; a failed delete only leaves a spent row that
	// expires on its own.
	if err := s.codes.Delete(ctx, vc.ID); err != nil {
		s.lg.Warnw("delete consumed verification code", "email", req.Email, "error", err)
	}
	s.audit(ctx, &user.ID, "auth.register", map[string]any{"email": user.Email})
	return user, nil
}

type SendOTPRequest struct {
	Email         string `json:"email"`
	Type          string `json:"type"`
	TempSessionID string `json:"tempSessionId"`
}

func (s *AuthService) SendOTP(ctx context.Context, req SendOTPRequest) error {
	email := req.Email
	ttl := s.cfg.OTPTTL

	switch req.Type {
	case models.VerificationLogin2FA:
		// The target user comes from the pending login session, never from a
		// client-submitted email.
		sess, err := s.sessions.GetTempSession(ctx, req.TempSessionID)
		if err != nil {
			return err
		}
		if sess == nil {
			return auth.ErrInvalidTempSession
		}
		user, err := s.users.FindByIDWithRole(ctx, sess.UserID)
		if err != nil {
			return auth.ErrInvalidTempSession
		}
		email = user.Email
		ttl = 5 * time.Minute
	case models.VerificationRegister:
		if _, err := s.users.FindByEmailWithRole(ctx, email); err == nil {
			return auth.ErrEmailAlreadyExists
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}
	case models.VerificationForgotPassword, models.VerificationLogin, models.VerificationDisable2FA:
		// These all target an existing account.
		if _, err := s.users.FindByEmailWithRole(ctx, email); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return auth.ErrEmailNotFound
			}
			return err
		}
	default:
		return auth.ErrInvalidOTPType
	}

	code, err := auth.GenerateOTPCode()
	if err != nil {
		return err
	}
	if err := s.codes.Upsert(ctx, email, req.Type, code, time.Now().Add(ttl)); err != nil {
		return err
	}
	// A delivery failure does not roll the code back; the upsert allows an
	// immediate re-issue.
	if err := s.mailer.SendOTP(ctx, email, code); err != nil {
		s.lg.Errorw("send otp email", "email", email, "type", req.Type, "error", err)
		return auth.ErrFailedToSendOTP
	}
	return nil
}

type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// LoginResult is either a token pair or a pending-2FA handle, never both.
type LoginResult struct {
	Tokens        *Tokens `json:"tokens,omitempty"`
	Requires2FA   bool    `json:"requires2FA,omitempty"`
	TempSessionID string  `json:"tempSessionId,omitempty"`
}

type LoginRequest struct {
	Email     string
	Password  string
	UserAgent string
	IP        string
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	user, err := s.users.FindByEmailWithRole(ctx, req.Email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, auth.ErrEmailNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := auth.CheckPassword(user.Password, req.Password); err != nil {
		return nil, auth.ErrInvalidPassword
	}

	if user.TOTPSecret != nil {
		// No device, no tokens until the second factor clears.
		tempSessionID, err := s.sessions.PutTempSession(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		return &LoginResult{Requires2FA: true, TempSessionID: tempSessionID}, nil
	}

	tokens, err := s.loginDevice(ctx, user, req.UserAgent, req.IP)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Tokens: tokens}, nil
}

type VerifyTwoFactorRequest struct {
	TempSessionID string
	Code          string
	Method        string // "totp" or "email"
	UserAgent     string
	IP            string
}

func (s *AuthService) VerifyTwoFactorAuth(ctx context.Context, req VerifyTwoFactorRequest) (*Tokens, error) {
	sess, err := s.sessions.GetTempSession(ctx, req.TempSessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, auth.ErrInvalidTempSession
	}
	user, err := s.users.FindByIDWithRole(ctx, sess.UserID)
	if err != nil {
		return nil, auth.ErrInvalidTempSession
	}

	switch req.Method {
	case "email":
		vc, err := s.codes.Find(ctx, user.Email, models.VerificationLogin2FA)
		if errors.Is(err, store.ErrNotFound) {
			return nil, auth.ErrInvalidOTP
		}
		if err != nil {
			return nil, err
		}
		if vc.Code != req.Code {
			return nil, auth.ErrInvalidOTP
		}
		if vc.ExpiresAt.Before(time.Now()) {
			return nil, auth.ErrOTPExpired
		}
		if err := s.codes.Delete(ctx, vc.ID); err != nil {
			s.lg.Warnw("delete consumed 2fa code", "email", user.Email, "error", err)
		}
	default: // totp
		if user.TOTPSecret == nil {
			return nil, auth.ErrTOTPNotEnabled
		}
		if !s.totp.VerifyCode(*user.TOTPSecret, req.Code) {
			return nil, auth.ErrInvalidTOTPToken
		}
	}

	tokens, err := s.loginDevice(ctx, user, req.UserAgent, req.IP)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.DeleteTempSession(ctx, req.TempSessionID); err != nil {
		s.lg.Warnw("delete temp 2fa session", "error", err)
	}
	return tokens, nil
}

// loginDevice completes a full login: records the device and issues the
// token pair bound to it.
func (s *AuthService) loginDevice(ctx context.Context, user *models.User, userAgent, ip string) (*Tokens, error) {
	device := &models.Device{UserID: user.ID, UserAgent: userAgent, IP: ip}
	if err := s.devices.CreateDevice(ctx, device); err != nil {
		return nil, err
	}
	tokens, row, err := s.signTokenPair(user, device.ID)
	if err != nil {
		return nil, err
	}
	if err := s.devices.CreateRefreshToken(ctx, row); err != nil {
		return nil, err
	}
	s.audit(ctx, &user.ID, "auth.login", map[string]any{"deviceId": device.ID, "ip": ip})
	return tokens, nil
}

// signTokenPair signs access and refresh tokens and prepares the refresh row;
// persisting the row is the caller's job so rotation can run it inside a
// transaction.
func (s *AuthService) signTokenPair(user *models.User, deviceID uint) (*Tokens, *models.RefreshToken, error) {
	access, err := s.tokens.SignAccessToken(user.ID, deviceID, user.RoleID, user.Role.Name)
	if err != nil {
		return nil, nil, err
	}
	refresh, err := s.tokens.SignRefreshToken(user.ID)
	if err != nil {
		return nil, nil, err
	}
	claims, err := s.tokens.VerifyRefreshToken(refresh)
	if err != nil {
		return nil, nil, err
	}
	row := &models.RefreshToken{
		Token:     refresh,
		UserID:    user.ID,
		DeviceID:  deviceID,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	return &Tokens{AccessToken: access, RefreshToken: refresh}, row, nil
}

type RefreshRequest struct {
	RefreshToken string
	UserAgent    string
	IP           string
}

func (s *AuthService) RefreshToken(ctx context.Context, req RefreshRequest) (*Tokens, error) {
	tokens, err := s.refreshToken(ctx, req)
	if err != nil {
		// Typed domain errors pass through; everything else collapses to a
		// generic invalid-token response.
		var appErr *auth.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, auth.Unauthorized("Error.InvalidRefreshToken")
	}
	return tokens, nil
}

func (s *AuthService) refreshToken(ctx context.Context, req RefreshRequest) (*Tokens, error) {
	if _, err := s.tokens.VerifyRefreshToken(req.RefreshToken); err != nil {
		return nil, auth.Unauthorized("Error.InvalidRefreshToken")
	}
	stored, err := s.devices.FindRefreshToken(ctx, req.RefreshToken)
	if errors.Is(err, store.ErrNotFound) {
		return nil, auth.Unauthorized("Error.RefreshTokenRevoked")
	}
	if err != nil {
		return nil, err
	}
	if stored.ExpiresAt.Before(time.Now()) {
		return nil, auth.Unauthorized("Error.RefreshTokenExpired")
	}

	user, err := s.users.FindByIDWithRole(ctx, stored.UserID)
	if err != nil {
		return nil, err
	}
	tokens, row, err := s.signTokenPair(user, stored.DeviceID)
	if err != nil {
		return nil, err
	}
	if err := s.devices.RotateRefreshToken(ctx, req.RefreshToken, row, req.IP, req.UserAgent); err != nil {
		return nil, err
	}
	s.audit(ctx, &user.ID, "auth.refresh", map[string]any{"deviceId": stored.DeviceID})
	return tokens, nil
}

func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if _, err := s.tokens.VerifyRefreshToken(refreshToken); err != nil {
		return auth.Unauthorized("Error.InvalidRefreshToken")
	}
	stored, err := s.devices.FindRefreshToken(ctx, refreshToken)
	if errors.Is(err, store.ErrNotFound) {
		return auth.Unauthorized("Error.RefreshTokenRevoked")
	}
	if err != nil {
		return err
	}
	if stored.ExpiresAt.Before(time.Now()) {
		return auth.Unauthorized("Error.RefreshTokenExpired")
	}
	if err := s.devices.DeleteRefreshToken(ctx, refreshToken); err != nil {
		return err
	}
	if err := s.devices.DeactivateDevice(ctx, stored.DeviceID); err != nil {
		return err
	}
	s.audit(ctx, &stored.UserID, "auth.logout", map[string]any{"deviceId": stored.DeviceID})
	return nil
}

type ForgotPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

func (s *AuthService) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error {
	user, err := s.users.FindByEmailWithRole(ctx, req.Email)
	if errors.Is(err, store.ErrNotFound) {
		return auth.ErrEmailNotFound
	}
	if err != nil {
		return err
	}

	vc, err := s.codes.Find(ctx, req.Email, models.VerificationForgotPassword)
	if errors.Is(err, store.ErrNotFound) {
		return auth.ErrInvalidOTP
	}
	if err != nil {
		return err
	}
	if vc.Code != req.Code {
		return auth.ErrInvalidOTP
	}
	if vc.ExpiresAt.Before(time.Now()) {
		return auth.ErrOTPExpired
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}
	if err := s.codes.Delete(ctx, vc.ID); err != nil {
		s.lg.Warnw("delete consumed forgot-password code", "email", req.Email, "error", err)
	}
	return nil
}

type TwoFactorSetup struct {
	TempID string `json:"tempId"`
	Secret string `json:"secret"`
	URI    string `json:"uri"`
}

// SetupTwoFactorAuth starts enablement: the secret lives only in the
// ephemeral store until the user proves possession via ActivateTwoFactorAuth.
func (s *AuthService) SetupTwoFactorAuth(ctx context.Context, userID uint) (*TwoFactorSetup, error) {
	user, err := s.users.FindByIDWithRole(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.TOTPSecret != nil {
		return nil, auth.ErrTOTPAlreadyEnabled
	}
	secret, uri, err := s.totp.GenerateSecret(user.Email)
	if err != nil {
		return nil, err
	}
	tempID, err := s.sessions.PutTempSecret(ctx, userID, secret)
	if err != nil {
		return nil, err
	}
	return &TwoFactorSetup{TempID: tempID, Secret: secret, URI: uri}, nil
}

func (s *AuthService) ActivateTwoFactorAuth(ctx context.Context, userID uint, tempID, code string) error {
	ts, err := s.sessions.GetTempSecret(ctx, tempID)
	if err != nil {
		return err
	}
	if ts == nil || ts.UserID != userID {
		return auth.ErrInvalidTempID
	}
	if !s.totp.VerifyCode(ts.Secret, code) {
		return auth.ErrInvalidTOTPToken
	}
	if err := s.users.SetTOTPSecret(ctx, userID, &ts.Secret); err != nil {
		return err
	}
	if err := s.sessions.DeleteTempSecret(ctx, tempID); err != nil {
		s.lg.Warnw("delete temp totp secret", "error", err)
	}
	s.audit(ctx, &userID, "auth.2fa.enable", nil)
	return nil
}

func (s *AuthService) DisableTwoFactorAuth(ctx context.Context, userID uint, code string) error {
	user, err := s.users.FindByIDWithRole(ctx, userID)
	if err != nil {
		return err
	}
	if user.TOTPSecret == nil {
		return auth.ErrTOTPNotEnabled
	}
	if !s.totp.VerifyCode(*user.TOTPSecret, code) {
		return auth.ErrInvalidTOTPToken
	}
	if err := s.users.SetTOTPSecret(ctx, userID, nil); err != nil {
		return err
	}
	s.audit(ctx, &userID, "auth.2fa.disable", nil)
	return nil
}

func (s *AuthService) audit(ctx context.Context, userID *uint, action string, meta map[string]any) {
	if s.audits == nil {
		return
	}
	if meta == nil {
		meta = map[string]any{}
	}
	if err := s.audits.Record(ctx, userID, action, meta); err != nil {
		s.lg.Warnw("record audit log", "action", action, "error", err)
	}
}
