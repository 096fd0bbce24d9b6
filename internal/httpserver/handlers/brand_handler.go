package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"qrorder/internal/models"
)

func ListBrands(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var brands []models.Brand
		_ = db.Order("created_at desc").Find(&brands).Error
		respondJSON(w, brands)
	}
}

func GetBrand(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var b models.Brand
		if err := db.First(&b, "id = ?", id).Error; err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		respondJSON(w, b)
	}
}

func CreateBrand(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name    string  `json:"name"`
			LogoURL *string `json:"logo_url"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		name := strings.TrimSpace(req.Name)
		if name == "" {
			http.Error(w, "name required", http.StatusBadRequest)
			return
		}
		b := models.Brand{Name: name, LogoURL: req.LogoURL, CreatedBy: actorID(r)}
		if err := db.Create(&b).Error; err != nil {
			respondError(w, lg, err)
			return
		}
		respondStatusJSON(w, http.StatusCreated, b)
	}
}

func UpdateBrand(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req struct {
			Name    *string `json:"name"`
			LogoURL *string `json:"logo_url"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var b models.Brand
		if err := db.First(&b, "id = ?", id).Error; err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
			b.Name = strings.TrimSpace(*req.Name)
		}
		if req.LogoURL != nil {
			b.LogoURL = req.LogoURL
		}
		b.UpdatedBy = actorID(r)
		if err := db.Save(&b).Error; err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, b)
	}
}

func DeleteBrand(db *gorm.DB, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := db.Delete(&models.Brand{}, "id = ?", id).Error; err != nil {
			respondError(w, lg, err)
			return
		}
		respondJSON(w, map[string]any{"deleted": true})
	}
}
