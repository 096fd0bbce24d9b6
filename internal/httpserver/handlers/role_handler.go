package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"qrorder/internal/auth"
	"qrorder/internal/models"
)

var reservedRoles = map[string]bool{
	models.RoleSuperAdmin: true,
	models.RoleAdmin:      true,
	models.RoleSeller:     true,
	models.RoleCustomer:   true,
}

func ListRoles(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var roles []models.Role
		_ = db.Preload("Permissions").Order("id asc").Find(&roles).Error
		respondJSON(w, roles)
	}
}

func GetRole(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var role models.Role
		if err := db.Preload("Permissions").First(&role, "id = ?", id).Error; err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		respondJSON(w, role)
	}
}

func CreateRole(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name          string `json:"name"`
			IsActive      *bool  `json:"is_active"`
			PermissionIDs []uint `json:"permission_ids"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		name := strings.ToUpper(strings.TrimSpace(req.Name))
		if name == "" {
			http.Error(w, "name required", http.StatusBadRequest)
			return
		}
		if reservedRoles[name] {
			respondStatusJSON(w, http.StatusUnprocessableEntity, &auth.Error{
				Message: "Error.RoleNameReserved", Path: "name",
			})
			return
		}
		role := models.Role{Name: name, IsActive: true}
		if req.IsActive != nil {
			role.IsActive = *req.IsActive
		}
		if len(req.PermissionIDs) > 0 {
			var perms []models.Permission
			if err := db.Where("id IN ?", req.PermissionIDs).Find(&perms).Error; err != nil {
				respondError(w, lg, err)
				return
			}
			role.Permissions = perms
		}
		if err := db.Create(&role).Error; err != nil {
			respondError(w, lg, err)
			return
		}
		respondStatusJSON(w, http.StatusCreated, role)
	}
}

func UpdateRole(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req struct {
			Name          *string `json:"name"`
			IsActive      *bool   `json:"is_active"`
			PermissionIDs []uint  `json:"permission_ids"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var role models.Role
		if err := db.Preload("Permissions").First(&role, "id = ?", id).Error; err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if req.Name != nil {
			name := strings.ToUpper(strings.TrimSpace(*req.Name))
			// Reserved roles keep their names; other roles cannot take one.
			if name != role.Name && (reservedRoles[role.Name] || reservedRoles[name]) {
				respondStatusJSON(w, http.StatusUnprocessableEntity, &auth.Error{
					Message: "Error.RoleNameReserved", Path: "name",
				})
				return
			}
			role.Name = name
		}
		if req.IsActive != nil {
			if !*req.IsActive && role.Name == models.RoleSuperAdmin {
				respondStatusJSON(w, http.StatusUnprocessableEntity, &auth.Error{
					Message: "Error.CannotDeactivateSuperAdmin", Path: "is_active",
				})
				return
			}
			role.IsActive = *req.IsActive
		}
		if req.PermissionIDs != nil {
			var perms []models.Permission
			if err := db.Where("id IN ?", req.PermissionIDs).Find(&perms).Error; err != nil {
				respondError(w, lg, err)
				return
			}
			if err := db.Model(&role).Association("Permissions").Replace(perms); err != nil {
				respondError(w, lg, err)
				return
			}
		}
		if err := db.Save(&role).Error; err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, role)
	}
}

func DeleteRole(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var role models.Role
		if err := db.First(&role, "id = ?", id).Error; err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if reservedRoles[role.Name] {
			respondStatusJSON(w, http.StatusUnprocessableEntity, &auth.Error{
				Message: "Error.RoleNameReserved", Path: "id",
			})
			return
		}
		var inUse int64
		if err := db.Model(&models.User{}).Where("role_id = ?", role.ID).Count(&inUse).Error; err != nil {
			respondError(w, lg, err)
			return
		}
		if inUse > 0 {
			respondStatusJSON(w, http.StatusUnprocessableEntity, &auth.Error{
				Message: "Error.RoleInUse", Path: "id",
			})
			return
		}
		if err := db.Delete(&role).Error; err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, map[string]any{"deleted": true})
	}
}
