package models

import (
	"time"

	"gorm.io/gorm"
)

// Reserved role names carrying special business rules.
const (
	RoleSuperAdmin = "SUPER_ADMIN"
	RoleAdmin      = "ADMIN"
	RoleSeller     = "SELLER"
	RoleCustomer   = "CUSTOMER"
)

type UserStatus string

const (
	UserStatusActive   UserStatus = "ACTIVE"
	UserStatusInactive UserStatus = "INACTIVE"
	UserStatusBlocked  UserStatus = "BLOCKED"
)

// Verification code purposes. At most one active code exists per (email, type).
const (
	VerificationRegister       = "REGISTER"
	VerificationForgotPassword = "FORGOT_PASSWORD"
	VerificationLogin          = "LOGIN"
	VerificationDisable2FA     = "DISABLE_2FA"
	VerificationLogin2FA       = "LOGIN_2FA"
)

type Role struct {
	ID          uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string         `gorm:"uniqueIndex;not null;size:100" json:"name"`
	IsActive    bool           `gorm:"not null;default:true" json:"is_active"`
	Permissions []Permission   `gorm:"many2many:role_permissions" json:"permissions,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// Permission is an allow-rule for one (method, path) pair. The pair must be
// unique among non-deleted rows; the handlers enforce that since a partial
// unique index cannot be expressed through tags alone.
type Permission struct {
	ID          uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string         `gorm:"not null;size:200" json:"name"`
	Description string         `gorm:"size:1000" json:"description"`
	Path        string         `gorm:"not null;size:500;index:idx_permissions_path_method" json:"path"`
	Method      string         `gorm:"not null;size:10;index:idx_permissions_path_method" json:"method"`
	Module      string         `gorm:"size:100" json:"module"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

type User struct {
	ID          uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Email       string         `gorm:"uniqueIndex;not null;size:500" json:"email"`
	Name        string         `gorm:"not null;size:500" json:"name"`
	Password    string         `gorm:"not null;size:500" json:"-"`
	PhoneNumber string         `gorm:"not null;size:50" json:"phone_number"`
	AvatarURL   *string        `gorm:"size:1000" json:"avatar_url,omitempty"`
	TOTPSecret  *string        `gorm:"size:1000" json:"-"`
	Status      UserStatus     `gorm:"not null;size:20;default:ACTIVE" json:"status"`
	RoleID      uint           `gorm:"not null;index" json:"role_id"`
	Role        Role           `json:"role,omitzero"`
	CreatedBy   *uint          `json:"created_by,omitempty"`
	UpdatedBy   *uint          `json:"updated_by,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// VerificationCode is a one-time email OTP. Expiry is checked at consumption
// time by the caller, not through a store-level TTL.
type VerificationCode struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Email     string    `gorm:"not null;size:500;uniqueIndex:idx_verification_email_type" json:"email"`
	Code      string    `gorm:"not null;size:50" json:"-"`
	Type      string    `gorm:"not null;size:50;uniqueIndex:idx_verification_email_type" json:"type"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Device is one login context. Every successful full login creates a row;
// refresh updates ip/user agent, logout flips IsActive off.
type Device struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	UserAgent  string    `gorm:"not null;size:1000" json:"user_agent"`
	IP         string    `gorm:"not null;size:100" json:"ip"`
	IsActive   bool      `gorm:"not null;default:true" json:"is_active"`
	LastActive time.Time `gorm:"not null" json:"last_active"`
	CreatedAt  time.Time `json:"created_at"`
}

// RefreshToken is keyed by the opaque signed token string. A device owns at
// most one live row; rotation deletes the old row and inserts the new one.
type RefreshToken struct {
	Token     string    `gorm:"primaryKey;size:1000" json:"-"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	DeviceID  uint      `gorm:"not null;index" json:"device_id"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

type Brand struct {
	ID        uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string         `gorm:"not null;size:500" json:"name"`
	LogoURL   *string        `gorm:"size:1000" json:"logo_url,omitempty"`
	CreatedBy *uint          `json:"created_by,omitempty"`
	UpdatedBy *uint          `json:"updated_by,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type Language struct {
	ID        string         `gorm:"primaryKey;size:10" json:"id"`
	Name      string         `gorm:"not null;size:500" json:"name"`
	CreatedBy *uint          `json:"created_by,omitempty"`
	UpdatedBy *uint          `json:"updated_by,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type AuditLog struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    *uint     `gorm:"index" json:"user_id,omitempty"`
	Action    string    `gorm:"not null" json:"action"`
	Metadata  JSONB     `gorm:"type:jsonb;default:'{}'::jsonb" json:"metadata"`
	CreatedAt time.Time `json:"created_at"`
}
