package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"qrorder/internal/auth"
	"qrorder/internal/models"
)

func ListUsers(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var users []models.User
		q := db.Preload("Role").Order("created_at desc")
		if status := r.URL.Query().Get("status"); status != "" {
			q = q.Where("status = ?", strings.ToUpper(status))
		}
		if roleID := r.URL.Query().Get("role_id"); roleID != "" {
			q = q.Where("role_id = ?", roleID)
		}
		_ = q.Find(&users).Error
		respondJSON(w, users)
	}
}

func GetUser(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var u models.User
		if err := db.Preload("Role").First(&u, "id = ?", id).Error; err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		respondJSON(w, u)
	}
}

func CreateUser(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name        string `json:"name"`
			Email       string `json:"email"`
			Password    string `json:"password"`
			PhoneNumber string `json:"phoneNumber"`
			RoleID      uint   `json:"roleId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req.Email = strings.TrimSpace(strings.ToLower(req.Email))
		if req.Name == "" || req.Email == "" || req.Password == "" || req.RoleID == 0 {
			http.Error(w, "name, email, password and roleId required", http.StatusBadRequest)
			return
		}
		var role models.Role
		if err := db.First(&role, "id = ?", req.RoleID).Error; err != nil {
			http.Error(w, "role not found", http.StatusBadRequest)
			return
		}
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		u := models.User{
			Name:        req.Name,
			Email:       req.Email,
			Password:    hash,
			PhoneNumber: req.PhoneNumber,
			Status:      models.UserStatusActive,
			RoleID:      role.ID,
			CreatedBy:   actorID(r),
		}
		if err := db.Create(&u).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				respondError(w, lg, auth.ErrEmailAlreadyExists)
				return
			}
			respondError(w, lg, err)
			return
		}
		u.Role = role
		respondStatusJSON(w, http.StatusCreated, u)
	}
}

func UpdateUser(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req struct {
			Name        *string `json:"name"`
			PhoneNumber *string `json:"phoneNumber"`
			Status      *string `json:"status"`
			RoleID      *uint   `json:"roleId"`
			Password    *string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var u models.User
		if err := db.First(&u, "id = ?", id).Error; err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if req.Name != nil {
			u.Name = *req.Name
		}
		if req.PhoneNumber != nil {
			u.PhoneNumber = *req.PhoneNumber
		}
		if req.Status != nil {
			switch s := models.UserStatus(strings.ToUpper(*req.Status)); s {
			case models.UserStatusActive, models.UserStatusInactive, models.UserStatusBlocked:
				u.Status = s
			default:
				http.Error(w, "invalid status", http.StatusBadRequest)
				return
			}
		}
		if req.RoleID != nil {
			var role models.Role
			if err := db.First(&role, "id = ?", *req.RoleID).Error; err != nil {
				http.Error(w, "role not found", http.StatusBadRequest)
				return
			}
			u.RoleID = role.ID
		}
		if req.Password != nil && *req.Password != "" {
			hash, err := auth.HashPassword(*req.Password)
			if err != nil {
				respondError(w, lg, err)
				return
			}
			u.Password = hash
		}
		u.UpdatedBy = actorID(r)
		if err := db.Save(&u).Error; err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, map[string]any{"updated": true})
	}
}

func DeleteUser(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var u models.User
		if err := db.First(&u, "id = ?", id).Error; err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if claims := auth.FromContext(r.Context()); claims != nil && u.ID == claims.UserID {
			http.Error(w, "cannot delete your own account", http.StatusBadRequest)
			return
		}
		if err := db.Delete(&u).Error; err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, map[string]any{"deleted": true})
	}
}
