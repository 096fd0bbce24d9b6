package store

import (
	"context"
	"errors"
	"sync"

	"gorm.io/gorm"

	"qrorder/internal/models"
)

// RoleCache is a process-wide read-through cache of role name to id. Re-deriving
// an id from the database always yields the same value, so the only locking
// needed is around the map itself; the first caller per name pays the lookup.
type RoleCache struct {
	db  *gorm.DB
	mu  sync.Mutex
	ids map[string]uint
}

func NewRoleCache(db *gorm.DB) *RoleCache {
	return &RoleCache{db: db, ids: make(map[string]uint)}
}

func (c *RoleCache) GetRoleID(ctx context.Context, name string) (uint, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id, ok := c.ids[name]; ok {
		return id, nil
	}
	var role models.Role
	err := c.db.WithContext(ctx).First(&role, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	c.ids[name] = role.ID
	return role.ID, nil
}

// CustomerRoleID resolves the role newly registered users are assigned.
func (c *RoleCache) CustomerRoleID(ctx context.Context) (uint, error) {
	return c.GetRoleID(ctx, models.RoleCustomer)
}
