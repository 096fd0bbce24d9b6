package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"qrorder/internal/auth"
	"qrorder/internal/config"
	"qrorder/internal/httpserver"
	"qrorder/internal/logger"
	"qrorder/internal/mailer"
	"qrorder/internal/models"
	"qrorder/internal/service"
	"qrorder/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	lg := logger.New()
	defer lg.Sync()

	if cfg.DatabaseURL == "" {
		lg.Fatalw("DATABASE_URL is empty")
	}
	if cfg.AccessTokenSecret == "" || cfg.RefreshTokenSecret == "" {
		lg.Fatalw("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET are required")
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		lg.Fatalw("db connect failed", "error", err)
	}
	if err := db.AutoMigrate(
		&models.Role{}, &models.Permission{}, &models.User{},
		&models.VerificationCode{}, &models.Device{}, &models.RefreshToken{},
		&models.Brand{}, &models.Language{}, &models.AuditLog{},
	); err != nil {
		lg.Fatalw("automigrate failed", "error", err)
	}
	seedRoles(db, lg)
	seedRoutePermissions(db, lg)
	seedDefaultAdmin(db, lg)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		lg.Fatalw("redis connect failed", "addr", cfg.RedisAddr, "error", err)
	}

	tokens := auth.NewTokenService(auth.TokenConfig{
		AccessSecret:  cfg.AccessTokenSecret,
		RefreshSecret: cfg.RefreshTokenSecret,
		AccessTTL:     cfg.AccessTokenExpiration,
		RefreshTTL:    cfg.RefreshTokenExpiration,
	})

	var mail mailer.Mailer
	if cfg.SMTPHost != "" {
		port, _ := strconv.Atoi(cfg.SMTPPort)
		mail = mailer.NewSMTPMailer(cfg.SMTPHost, port, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom, cfg.AppName)
	} else {
		lg.Infow("SMTP_HOST not set, logging OTP emails instead")
		mail = mailer.NewLogMailer(lg)
	}

	svc := service.NewAuthService(service.Config{OTPTTL: cfg.OTPExpiration}, service.Deps{
		Users:    store.NewUserStore(db),
		Codes:    store.NewCodeStore(db),
		Devices:  store.NewDeviceStore(db),
		Sessions: store.NewEphemeralStore(rdb),
		Roles:    store.NewRoleCache(db),
		Mailer:   mail,
		Audits:   store.NewAuditStore(db),
		Tokens:   tokens,
		TOTP:     auth.NewTOTPGenerator(cfg.AppName),
		Logger:   lg,
	})

	router := httpserver.NewRouter(httpserver.Deps{
		DB:     db,
		Log:    lg,
		Auth:   svc,
		Tokens: tokens,
		Perms:  store.NewPermissionStore(db),
		APIKey: cfg.SecretAPIKey,
	})

	lg.Infow("listening", "port", cfg.HTTPPort)
	if err := http.ListenAndServe(":"+cfg.HTTPPort, router); err != nil {
		log.Fatal(err)
	}
}

func seedRoles(db *gorm.DB, lg *zap.SugaredLogger) {
	for _, name := range []string{models.RoleSuperAdmin, models.RoleAdmin, models.RoleSeller, models.RoleCustomer} {
		db.Exec("INSERT INTO roles(name, is_active, created_at, updated_at) VALUES (?, true, now(), now()) ON CONFLICT DO NOTHING", name)
	}
	lg.Infow("seeded reserved roles")
}

// seedRoutePermissions keeps a permission row per guarded route and grants all
// of them to SUPER_ADMIN and ADMIN. New routes added here show up on next
// boot; revoked grants are an admin operation, so nothing is removed.
func seedRoutePermissions(db *gorm.DB, lg *zap.SugaredLogger) {
	type routePerm struct {
		name, method, path, module string
	}
	routes := []routePerm{
		{"users.list", "GET", "/v1/admin/users", "users"},
		{"users.create", "POST", "/v1/admin/users", "users"},
		{"users.get", "GET", "/v1/admin/users/{id}", "users"},
		{"users.update", "PATCH", "/v1/admin/users/{id}", "users"},
		{"users.delete", "DELETE", "/v1/admin/users/{id}", "users"},

		{"roles.list", "GET", "/v1/roles", "roles"},
		{"roles.create", "POST", "/v1/roles", "roles"},
		{"roles.get", "GET", "/v1/roles/{id}", "roles"},
		{"roles.update", "PATCH", "/v1/roles/{id}", "roles"},
		{"roles.delete", "DELETE", "/v1/roles/{id}", "roles"},

		{"permissions.list", "GET", "/v1/permissions", "permissions"},
		{"permissions.create", "POST", "/v1/permissions", "permissions"},
		{"permissions.get", "GET", "/v1/permissions/{id}", "permissions"},
		{"permissions.update", "PATCH", "/v1/permissions/{id}", "permissions"},
		{"permissions.delete", "DELETE", "/v1/permissions/{id}", "permissions"},

		{"brands.list", "GET", "/v1/brands", "brands"},
		{"brands.create", "POST", "/v1/brands", "brands"},
		{"brands.get", "GET", "/v1/brands/{id}", "brands"},
		{"brands.update", "PATCH", "/v1/brands/{id}", "brands"},
		{"brands.delete", "DELETE", "/v1/brands/{id}", "brands"},

		{"languages.list", "GET", "/v1/languages", "languages"},
		{"languages.create", "POST", "/v1/languages", "languages"},
		{"languages.get", "GET", "/v1/languages/{id}", "languages"},
		{"languages.update", "PATCH", "/v1/languages/{id}", "languages"},
		{"languages.delete", "DELETE", "/v1/languages/{id}", "languages"},
	}

	var perms []models.Permission
	for _, rt := range routes {
		var p models.Permission
		err := db.Where("path = ? AND method = ?", rt.path, rt.method).First(&p).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			p = models.Permission{Name: rt.name, Path: rt.path, Method: rt.method, Module: rt.module}
			if err := db.Create(&p).Error; err != nil {
				lg.Errorw("seed permission failed", "name", rt.name, "error", err)
				continue
			}
		} else if err != nil {
			lg.Errorw("seed permission lookup failed", "name", rt.name, "error", err)
			continue
		}
		perms = append(perms, p)
	}

	for _, roleName := range []string{models.RoleSuperAdmin, models.RoleAdmin} {
		var role models.Role
		if err := db.First(&role, "name = ?", roleName).Error; err != nil {
			continue
		}
		if err := db.Model(&role).Association("Permissions").Replace(perms); err != nil {
			lg.Errorw("seed role permissions failed", "role", roleName, "error", err)
		}
	}
	lg.Infow("seeded route permissions", "count", len(perms))
}

func seedDefaultAdmin(db *gorm.DB, lg *zap.SugaredLogger) {
	email := envOr("SUPERADMIN_EMAIL", "admin@qrorder.local")
	var count int64
	db.Model(&models.User{}).Where("LOWER(email) = ?", email).Count(&count)
	if count > 0 {
		return
	}
	password := envOr("SUPERADMIN_PASSWORD", "changeme")
	var role models.Role
	if err := db.First(&role, "name = ?", models.RoleSuperAdmin).Error; err != nil {
		lg.Errorw("super admin role missing", "error", err)
		return
	}
	hash, _ := auth.HashPassword(password)
	u := models.User{
		Name:        "Super Admin",
		Email:       email,
		Password:    hash,
		PhoneNumber: "-",
		Status:      models.UserStatusActive,
		RoleID:      role.ID,
	}
	if err := db.Create(&u).Error; err != nil {
		lg.Errorw("seed default admin failed", "error", err)
		return
	}
	lg.Infow("seeded default super admin", "email", email)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
