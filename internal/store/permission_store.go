package store

import (
	"context"

	"gorm.io/gorm"
)

// PermissionStore answers the authorization guard's per-request question: does
// this role hold a permission for the exact (path, method)? Every call hits
// the database so permission edits apply immediately.
type PermissionStore struct {
	db *gorm.DB
}

func NewPermissionStore(db *gorm.DB) *PermissionStore {
	return &PermissionStore{db: db}
}

func (s *PermissionStore) HasPermission(ctx context.Context, roleID uint, path, method string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Table("role_permissions").
		Joins("JOIN permissions ON permissions.id = role_permissions.permission_id").
		Joins("JOIN roles ON roles.id = role_permissions.role_id").
		Where("role_permissions.role_id = ?", roleID).
		Where("permissions.path = ? AND permissions.method = ?", path, method).
		Where("permissions.deleted_at IS NULL").
		Where("roles.deleted_at IS NULL AND roles.is_active").
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
