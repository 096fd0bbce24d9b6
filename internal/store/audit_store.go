package store

import (
	"context"
	"encoding/json"

	"gorm.io/gorm"

	"qrorder/internal/models"
)

// AuditStore appends auth events (login, logout, refresh, 2FA changes) to the
// audit_logs table.
type AuditStore struct {
	db *gorm.DB
}

func NewAuditStore(db *gorm.DB) *AuditStore {
	return &AuditStore{db: db}
}

func (s *AuditStore) Record(ctx context.Context, userID *uint, action string, meta map[string]any) error {
	payload, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	log := models.AuditLog{
		UserID:   userID,
		Action:   action,
		Metadata: models.JSONB(payload),
	}
	return s.db.WithContext(ctx).Create(&log).Error
}
