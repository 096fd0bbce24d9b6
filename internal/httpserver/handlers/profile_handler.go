package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"qrorder/internal/auth"
	"qrorder/internal/models"
)

func Me(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var u models.User
		if err := db.Preload("Role.Permissions").First(&u, "id = ?", auth.UserID(r.Context())).Error; err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		respondJSON(w, u)
	}
}

func UpdateProfile(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name        *string `json:"name"`
			PhoneNumber *string `json:"phoneNumber"`
			AvatarURL   *string `json:"avatarUrl"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var u models.User
		if err := db.First(&u, "id = ?", auth.UserID(r.Context())).Error; err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if req.Name != nil && *req.Name != "" {
			u.Name = *req.Name
		}
		if req.PhoneNumber != nil && *req.PhoneNumber != "" {
			u.PhoneNumber = *req.PhoneNumber
		}
		if req.AvatarURL != nil {
			u.AvatarURL = req.AvatarURL
		}
		u.UpdatedBy = actorID(r)
		if err := db.Save(&u).Error; err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, u)
	}
}

func ChangePassword(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			OldPassword        string `json:"oldPassword"`
			NewPassword        string `json:"newPassword"`
			ConfirmNewPassword string `json:"confirmNewPassword"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.NewPassword == "" || req.NewPassword != req.ConfirmNewPassword {
			respondStatusJSON(w, http.StatusUnprocessableEntity, &auth.Error{
				Message: "Error.PasswordsDoNotMatch", Path: "confirmNewPassword",
			})
			return
		}
		var u models.User
		if err := db.First(&u, "id = ?", auth.UserID(r.Context())).Error; err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if err := auth.CheckPassword(u.Password, req.OldPassword); err != nil {
			respondError(w, lg, auth.ErrInvalidPassword)
			return
		}
		hash, err := auth.HashPassword(req.NewPassword)
		if err != nil {
			respondError(w, lg, err)
			return
		}
		if err := db.Model(&u).Update("password", hash).Error; err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, map[string]any{"message": "Password updated successfully"})
	}
}

// MyLogs lists the caller's own audit trail, newest first.
func MyLogs(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 100
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
				limit = n
			}
		}
		var logs []models.AuditLog
		_ = db.Where("user_id = ?", auth.UserID(r.Context())).
			Order("created_at desc").Limit(limit).Find(&logs).Error
		respondJSON(w, logs)
	}
}

func ListDevices(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var devices []models.Device
		_ = db.Where("user_id = ?", auth.UserID(r.Context())).
			Order("last_active desc").Find(&devices).Error
		respondJSON(w, devices)
	}
}
