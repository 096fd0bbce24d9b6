package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"qrorder/internal/models"
)

// CodeStore persists one-time email OTP codes, at most one active row per
// (email, type).
type CodeStore struct {
	db *gorm.DB
}

func NewCodeStore(db *gorm.DB) *CodeStore {
	return &CodeStore{db: db}
}

// Upsert replaces the code and expiry of an existing (email, type) row, or
// inserts a fresh one.
func (s *CodeStore) Upsert(ctx context.Context, email, codeType, code string, expiresAt time.Time) error {
	vc := models.VerificationCode{
		Email:     email,
		Type:      codeType,
		Code:      code,
		ExpiresAt: expiresAt,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}, {Name: "type"}},
		DoUpdates: clause.AssignmentColumns([]string{"code", "expires_at"}),
	}).Create(&vc).Error
}

func (s *CodeStore) Find(ctx context.Context, email, codeType string) (*models.VerificationCode, error) {
	var vc models.VerificationCode
	err := s.db.WithContext(ctx).First(&vc, "email = ? AND type = ?", email, codeType).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &vc, nil
}

func (s *CodeStore) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.VerificationCode{}, id).Error
}
