package handlers

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"go.uber.org/zap"

	"qrorder/internal/auth"
)

func respondJSON(w http.ResponseWriter, v interface{}) {
	respondStatusJSON(w, http.StatusOK, v)
}

func respondStatusJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

// respondError maps typed domain errors to their status/message/path triple
// and collapses everything else to a generic 500 so internals never leak.
func respondError(w http.ResponseWriter, lg *zap.SugaredLogger, err error) {
	var appErr *auth.Error
	if errors.As(err, &appErr) {
		respondStatusJSON(w, appErr.Status, appErr)
		return
	}
	lg.Errorw("unhandled error", "error", err)
	respondStatusJSON(w, http.StatusInternalServerError, map[string]any{"message": "Error.Internal"})
}

// actorID returns the authenticated user's id for created_by/updated_by
// columns, or nil when the route was reached without bearer claims.
func actorID(r *http.Request) *uint {
	if claims := auth.FromContext(r.Context()); claims != nil {
		return &claims.UserID
	}
	return nil
}

func clientIP(r *http.Request) string {
	// middleware.RealIP has already rewritten RemoteAddr when the request
	// came through a proxy.
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
