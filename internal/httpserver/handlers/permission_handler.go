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

var allowedMethods = map[string]bool{
	"GET": true, "POST": true, "PUT": true, "PATCH": true, "DELETE": true,
}

// permissionPairTaken reports whether a live permission row already claims the
// (path, method) pair. Soft-deleted rows do not block reuse, so the check runs
// here instead of relying on a plain unique index.
func permissionPairTaken(db *gorm.DB, path, method string, excludeID uint) (bool, error) {
	var count int64
	q := db.Model(&models.Permission{}).Where("path = ? AND method = ?", path, method)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func ListPermissions(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var perms []models.Permission
		q := db.Order("module asc, path asc, method asc")
		if module := r.URL.Query().Get("module"); module != "" {
			q = q.Where("module = ?", module)
		}
		_ = q.Find(&perms).Error
		respondJSON(w, perms)
	}
}

func GetPermission(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var p models.Permission
		if err := db.First(&p, "id = ?", id).Error; err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		respondJSON(w, p)
	}
}

func CreatePermission(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name        string `json:"name"`
			Description string `json:"description"`
			Path        string `json:"path"`
			Method      string `json:"method"`
			Module      string `json:"module"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req.Path = strings.TrimSpace(req.Path)
		req.Method = strings.ToUpper(strings.TrimSpace(req.Method))
		if req.Name == "" || req.Path == "" || !allowedMethods[req.Method] {
			http.Error(w, "name, path and a valid method are required", http.StatusBadRequest)
			return
		}
		taken, err := permissionPairTaken(db, req.Path, req.Method, 0)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		if taken {
			respondStatusJSON(w, http.StatusUnprocessableEntity, &auth.Error{
				Message: "Error.PermissionAlreadyExists", Path: "path",
			})
			return
		}
		p := models.Permission{
			Name:        req.Name,
			Description: req.Description,
			Path:        req.Path,
			Method:      req.Method,
			Module:      req.Module,
		}
		if err := db.Create(&p).Error; err != nil {
			respondError(w, lg, err)
			return
		}
		respondStatusJSON(w, http.StatusCreated, p)
	}
}

func UpdatePermission(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req struct {
			Name        *string `json:"name"`
			Description *string `json:"description"`
			Path        *string `json:"path"`
			Method      *string `json:"method"`
			Module      *string `json:"module"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var p models.Permission
		if err := db.First(&p, "id = ?", id).Error; err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if req.Name != nil {
			p.Name = *req.Name
		}
		if req.Description != nil {
			p.Description = *req.Description
		}
		if req.Path != nil {
			p.Path = strings.TrimSpace(*req.Path)
		}
		if req.Method != nil {
			m := strings.ToUpper(strings.TrimSpace(*req.Method))
			if !allowedMethods[m] {
				http.Error(w, "invalid method", http.StatusBadRequest)
				return
			}
			p.Method = m
		}
		if req.Module != nil {
			p.Module = *req.Module
		}
		taken, err := permissionPairTaken(db, p.Path, p.Method, p.ID)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		if taken {
			respondStatusJSON(w, http.StatusUnprocessableEntity, &auth.Error{
				Message: "Error.PermissionAlreadyExists", Path: "path",
			})
			return
		}
		if err := db.Save(&p).Error; err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, p)
	}
}

func DeletePermission(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := db.Delete(&models.Permission{}, "id = ?", id).Error; err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, map[string]any{"deleted": true})
	}
}
