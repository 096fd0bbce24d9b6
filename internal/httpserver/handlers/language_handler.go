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

func ListLanguages(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var langs []models.Language
		_ = db.Order("id asc").Find(&langs).Error
		respondJSON(w, langs)
	}
}

func GetLanguage(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.ToLower(chi.URLParam(r, "id"))
		var l models.Language
		if err := db.First(&l, "id = ?", id).Error; err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		respondJSON(w, l)
	}
}

func CreateLanguage(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req.ID = strings.ToLower(strings.TrimSpace(req.ID))
		req.Name = strings.TrimSpace(req.Name)
		if req.ID == "" || req.Name == "" {
			http.Error(w, "id and name required", http.StatusBadRequest)
			return
		}
		l := models.Language{ID: req.ID, Name: req.Name, CreatedBy: actorID(r)}
		if err := db.Create(&l).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				respondStatusJSON(w, http.StatusUnprocessableEntity, &auth.Error{
					Message: "Error.LanguageAlreadyExists", Path: "id",
				})
				return
			}
			respondError(w, lg, err)
			return
		}
		respondStatusJSON(w, http.StatusCreated, l)
	}
}

func UpdateLanguage(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.ToLower(chi.URLParam(r, "id"))
		var req struct {
			Name *string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var l models.Language
		if err := db.First(&l, "id = ?", id).Error; err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
			l.Name = strings.TrimSpace(*req.Name)
		}
		l.UpdatedBy = actorID(r)
		if err := db.Save(&l).Error; err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, l)
	}
}

func DeleteLanguage(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.ToLower(chi.URLParam(r, "id"))
		if err := db.Delete(&models.Language{}, "id = ?", id).Error; err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, map[string]any{"deleted": true})
	}
}
