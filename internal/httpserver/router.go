package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"qrorder/internal/auth"
	"qrorder/internal/httpserver/guard"
	"qrorder/internal/httpserver/handlers"
	"qrorder/internal/service"
)

type Deps struct {
	DB     *gorm.DB
	Log    *zap.SugaredLogger
	Auth   *service.AuthService
	Tokens *auth.TokenService
	Perms  guard.PermissionChecker
	APIKey string
}

func NewRouter(d Deps) http.Handler {
	db, lg := d.DB, d.Log
	bearer := guard.NewBearerStrategy(d.Tokens)
	apiKey := guard.NewAPIKeyStrategy(d.APIKey)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, middleware.Logger)

	r.Post("/v1/auth/register", handlers.Register(d.Auth, lg))
	r.Post("/v1/auth/otp", handlers.SendOTP(d.Auth, lg))
	r.Post("/v1/auth/login", handlers.Login(d.Auth, lg))
	r.Post("/v1/auth/refresh-token", handlers.RefreshToken(d.Auth, lg))
	r.Post("/v1/auth/forgot-password", handlers.ForgotPassword(d.Auth, lg))
	r.Post("/v1/auth/2fa/verify", handlers.VerifyTwoFactor(d.Auth, lg))

	r.Group(func(protected chi.Router) {
		protected.Use(guard.Authentication(guard.ConditionOR, bearer))

		// Session management and profile routes skip the permission check:
		// any authenticated user owns them.
		protected.Post("/v1/auth/logout", handlers.Logout(d.Auth, lg))
		protected.Post("/v1/auth/2fa/setup", handlers.SetupTwoFactor(d.Auth, lg))
		protected.Post("/v1/auth/2fa/activate", handlers.ActivateTwoFactor(d.Auth, lg))
		protected.Post("/v1/auth/2fa/disable", handlers.DisableTwoFactor(d.Auth, lg))

		protected.Get("/v1/me", handlers.Me(db, lg))
		protected.Patch("/v1/me", handlers.UpdateProfile(db, lg))
		protected.Post("/v1/me/password", handlers.ChangePassword(db, lg))
		protected.Get("/v1/me/logs", handlers.MyLogs(db, lg))
		protected.Get("/v1/me/devices", handlers.ListDevices(db, lg))

		// Everything below requires a permission row matching the exact
		// (method, path) the route is registered under.
		guarded := func(method, path string, h http.HandlerFunc) {
			protected.Method(method, path, guard.Authorize(d.Perms, lg, method, path, h))
		}

		guarded("GET", "/v1/admin/users", handlers.ListUsers(db, lg))
		guarded("POST", "/v1/admin/users", handlers.CreateUser(db, lg))
		guarded("GET", "/v1/admin/users/{id}", handlers.GetUser(db, lg))
		guarded("PATCH", "/v1/admin/users/{id}", handlers.UpdateUser(db, lg))
		guarded("DELETE", "/v1/admin/users/{id}", handlers.DeleteUser(db, lg))

		guarded("GET", "/v1/roles", handlers.ListRoles(db, lg))
		guarded("POST", "/v1/roles", handlers.CreateRole(db, lg))
		guarded("GET", "/v1/roles/{id}", handlers.GetRole(db, lg))
		guarded("PATCH", "/v1/roles/{id}", handlers.UpdateRole(db, lg))
		guarded("DELETE", "/v1/roles/{id}", handlers.DeleteRole(db, lg))

		guarded("GET", "/v1/permissions", handlers.ListPermissions(db, lg))
		guarded("POST", "/v1/permissions", handlers.CreatePermission(db, lg))
		guarded("GET", "/v1/permissions/{id}", handlers.GetPermission(db, lg))
		guarded("PATCH", "/v1/permissions/{id}", handlers.UpdatePermission(db, lg))
		guarded("DELETE", "/v1/permissions/{id}", handlers.DeletePermission(db, lg))

		guarded("GET", "/v1/brands", handlers.ListBrands(db, lg))
		guarded("POST", "/v1/brands", handlers.CreateBrand(db, lg))
		guarded("GET", "/v1/brands/{id}", handlers.GetBrand(db, lg))
		guarded("PATCH", "/v1/brands/{id}", handlers.UpdateBrand(db, lg))
		guarded("DELETE", "/v1/brands/{id}", handlers.DeleteBrand(db, lg))

		guarded("GET", "/v1/languages", handlers.ListLanguages(db, lg))
		guarded("POST", "/v1/languages", handlers.CreateLanguage(db, lg))
		guarded("GET", "/v1/languages/{id}", handlers.GetLanguage(db, lg))
		guarded("PATCH", "/v1/languages/{id}", handlers.UpdateLanguage(db, lg))
		guarded("DELETE", "/v1/languages/{id}", handlers.DeleteLanguage(db, lg))
	})

	// Service-to-service surface: a shared API key passes on its own, so does
	// a regular bearer token.
	r.Group(func(internal chi.Router) {
		internal.Use(guard.Authentication(guard.ConditionOR, apiKey, bearer))
		internal.Get("/v1/internal/permissions", handlers.ListPermissions(db, lg))
		internal.Get("/v1/internal/languages", handlers.ListLanguages(db, lg))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	return r
}
