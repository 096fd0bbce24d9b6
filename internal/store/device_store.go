package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"qrorder/internal/models"
)

// DeviceStore persists login devices and their refresh tokens.
type DeviceStore struct {
	db *gorm.DB
}

func NewDeviceStore(db *gorm.DB) *DeviceStore {
	return &DeviceStore{db: db}
}

func (s *DeviceStore) CreateDevice(ctx context.Context, d *models.Device) error {
	if d.LastActive.IsZero() {
		d.LastActive = time.Now()
	}
	d.IsActive = true
	return s.db.WithContext(ctx).Create(d).Error
}

func (s *DeviceStore) DeactivateDevice(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Model(&models.Device{}).Where("id = ?", id).
		Update("is_active", false).Error
}

func (s *DeviceStore) CreateRefreshToken(ctx context.Context, rt *models.RefreshToken) error {
	return s.db.WithContext(ctx).Create(rt).Error
}

func (s *DeviceStore) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	var rt models.RefreshToken
	err := s.db.WithContext(ctx).First(&rt, "token = ?", token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rt, nil
}

func (s *DeviceStore) DeleteRefreshToken(ctx context.Context, token string) error {
	return s.db.WithContext(ctx).Delete(&models.RefreshToken{}, "token = ?", token).Error
}

// RotateRefreshToken atomically refreshes the device's ip/user agent, removes
// the consumed token row and inserts its replacement. Running the three steps
// in one transaction keeps the one-live-token-per-device invariant across a
// crash mid-rotation.
func (s *DeviceStore) RotateRefreshToken(ctx context.Context, oldToken string, next *models.RefreshToken, ip, userAgent string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Device{}).Where("id = ?", next.DeviceID).
			Updates(map[string]any{"ip": ip, "user_agent": userAgent, "last_active": time.Now()}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.RefreshToken{}, "token = ?", oldToken).Error; err != nil {
			return err
		}
		return tx.Create(next).Error
	})
}
