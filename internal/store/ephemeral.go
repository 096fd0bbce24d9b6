package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	tempSecretPrefix  = "2fa:setup:"
	tempSessionPrefix = "2fa:login:"
	// Entries auto-expire; losing them only forces the user to restart the
	// 2FA setup or login flow.
	tempTTL = 5 * time.Minute
)

// TempSecret is a not-yet-confirmed TOTP secret held between setup and
// activation.
type TempSecret struct {
	UserID uint   `json:"userId"`
	Secret string `json:"secret"`
}

// TempSession is a password-validated login waiting for its second factor.
type TempSession struct {
	UserID uint `json:"userId"`
}

// EphemeralStore keeps short-lived 2FA state in redis under opaque random
// ids. Nothing here is durable; the TTL is the only cleanup path.
type EphemeralStore struct {
	rdb *redis.Client
}

func NewEphemeralStore(rdb *redis.Client) *EphemeralStore {
	return &EphemeralStore{rdb: rdb}
}

func (s *EphemeralStore) PutTempSecret(ctx context.Context, userID uint, secret string) (string, error) {
	tempID := uuid.NewString()
	payload, err := json.Marshal(TempSecret{UserID: userID, Secret: secret})
	if err != nil {
		return "", err
	}
	if err := s.rdb.Set(ctx, tempSecretPrefix+tempID, payload, tempTTL).Err(); err != nil {
		return "", err
	}
	return tempID, nil
}

// GetTempSecret returns nil without error when the entry is missing or
// expired.
func (s *EphemeralStore) GetTempSecret(ctx context.Context, tempID string) (*TempSecret, error) {
	data, err := s.rdb.Get(ctx, tempSecretPrefix+tempID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ts TempSecret
	if err := json.Unmarshal(data, &ts); err != nil {
		return nil, err
	}
	return &ts, nil
}

func (s *EphemeralStore) DeleteTempSecret(ctx context.Context, tempID string) error {
	return s.rdb.Del(ctx, tempSecretPrefix+tempID).Err()
}

func (s *EphemeralStore) PutTempSession(ctx context.Context, userID uint) (string, error) {
	tempSessionID := uuid.NewString()
	payload, err := json.Marshal(TempSession{UserID: userID})
	if err != nil {
		return "", err
	}
	if err := s.rdb.Set(ctx, tempSessionPrefix+tempSessionID, payload, tempTTL).Err(); err != nil {
		return "", err
	}
	return tempSessionID, nil
}

// GetTempSession returns nil without error when the entry is missing or
// expired.
func (s *EphemeralStore) GetTempSession(ctx context.Context, tempSessionID string) (*TempSession, error) {
	data, err := s.rdb.Get(ctx, tempSessionPrefix+tempSessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ts TempSession
	if err := json.Unmarshal(data, &ts); err != nil {
		return nil, err
	}
	return &ts, nil
}

func (s *EphemeralStore) DeleteTempSession(ctx context.Context, tempSessionID string) error {
	return s.rdb.Del(ctx, tempSessionPrefix+tempSessionID).Err()
}
