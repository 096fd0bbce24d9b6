package guard

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"qrorder/internal/auth"
)

// Condition controls how a route's strategy list composes.
type Condition string

const (
	ConditionOR  Condition = "OR"
	ConditionAND Condition = "AND"
)

// Strategy is one way of authenticating a request. A strategy may return nil
// claims on success (e.g. a machine API key carries no user identity).
type Strategy interface {
	Name() string
	Authenticate(r *http.Request) (*auth.AccessClaims, error)
}

// BearerStrategy verifies the Authorization bearer access token.
type BearerStrategy struct {
	tokens *auth.TokenService
}

func NewBearerStrategy(tokens *auth.TokenService) *BearerStrategy {
	return &BearerStrategy{tokens: tokens}
}

func (s *BearerStrategy) Name() string { return "Bearer" }

func (s *BearerStrategy) Authenticate(r *http.Request) (*auth.AccessClaims, error) {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return nil, errors.New("no access token provided")
	}
	claims, err := s.tokens.VerifyAccessToken(strings.TrimPrefix(h, "Bearer "))
	if err != nil {
		return nil, errors.New("invalid access token")
	}
	return claims, nil
}

// APIKeyStrategy matches the X-API-Key header against the configured secret
// in constant time.
type APIKeyStrategy struct {
	key string
}

func NewAPIKeyStrategy(key string) *APIKeyStrategy {
	return &APIKeyStrategy{key: key}
}

func (s *APIKeyStrategy) Name() string { return "ApiKey" }

func (s *APIKeyStrategy) Authenticate(r *http.Request) (*auth.AccessClaims, error) {
	v := r.Header.Get("X-API-Key")
	if v == "" {
		return nil, errors.New("API key is missing")
	}
	if subtle.ConstantTimeCompare([]byte(v), []byte(s.key)) != 1 {
		return nil, errors.New("invalid API key")
	}
	return nil, nil
}

type strategyFailure struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// Authentication composes the given strategies into a middleware. OR admits
// the request on the first passing strategy and reports every failure when
// none pass; AND requires all of them and reports the ones that failed.
// Public routes simply omit this middleware.
func Authentication(cond Condition, strategies ...Strategy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var failures []strategyFailure
			var claims *auth.AccessClaims
			passed := 0

			for _, s := range strategies {
				c, err := s.Authenticate(r)
				if err != nil {
					failures = append(failures, strategyFailure{Type: s.Name(), Error: err.Error()})
					if cond == ConditionAND {
						break
					}
					continue
				}
				passed++
				if c != nil {
					claims = c
				}
				if cond == ConditionOR {
					break
				}
			}

			switch cond {
			case ConditionAND:
				if len(failures) > 0 || passed != len(strategies) {
					writeJSON(w, http.StatusUnauthorized, map[string]any{
						"message": "Some authentication methods failed",
						"errors":  failures,
					})
					return
				}
			default: // OR
				if passed == 0 {
					writeJSON(w, http.StatusUnauthorized, map[string]any{
						"message": "All authentication methods failed",
						"errors":  failures,
					})
					return
				}
			}

			if claims != nil {
				r = r.WithContext(auth.WithClaims(r.Context(), claims))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
