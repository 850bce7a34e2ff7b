// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/goccy/go-json"
	"golang.org/x/crypto/bcrypt"

	"github.com/tomtom215/salesradar/internal/logging"
	"github.com/tomtom215/salesradar/internal/models"
)

type contextKey string

const adminUserKey contextKey = "admin_user"

// ErrAdminDisabled is returned when no admin credentials are configured.
var ErrAdminDisabled = errors.New("admin endpoints disabled: no credentials configured")

// AdminAuth guards admin endpoints with HTTP basic auth against a bcrypt
// password hash from configuration.
type AdminAuth struct {
	username     string
	passwordHash []byte
	audit        *logging.AuditLogger
}

// NewAdminAuth validates the configured hash. audit may be nil.
func NewAdminAuth(username, passwordHash string, audit *logging.AuditLogger) (*AdminAuth, error) {
	if username == "" || passwordHash == "" {
		return nil, ErrAdminDisabled
	}
	if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
		return nil, fmt.Errorf("invalid admin password hash: %w", err)
	}
	return &AdminAuth{
		username:     username,
		passwordHash: []byte(passwordHash),
		audit:        audit,
	}, nil
}

// Middleware rejects requests without valid credentials with 401.
func (a *AdminAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok {
			a.reject(w, r, "", "missing credentials")
			return
		}
		if !a.valid(username, password) {
			a.reject(w, r, username, "invalid username or password")
			return
		}
		ctx := context.WithValue(r.Context(), adminUserKey, username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// valid compares both fields without short-circuiting.
func (a *AdminAuth) valid(username, password string) bool {
	usernameMatch := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passwordMatch := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)) == nil
	return usernameMatch && passwordMatch
}

func (a *AdminAuth) reject(w http.ResponseWriter, r *http.Request, username, reason string) {
	if a.audit != nil {
		a.audit.LogAuthFailure(username, ClientIP(r), r.UserAgent(), reason)
	}
	w.Header().Set("WWW-Authenticate", `Basic realm="Salesradar", charset="UTF-8"`)
	writeError(w, http.StatusUnauthorized, models.ErrCodeUnauthorized, "authentication required")
}

// AdminUser returns the authenticated admin username.
func AdminUser(ctx context.Context) string {
	if u, ok := ctx.Value(adminUserKey).(string); ok {
		return u
	}
	return ""
}

// ClientIP is the remote address without port. chi's RealIP middleware has
// already applied X-Forwarded-For when it runs first.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	data, err := json.Marshal(models.NewError(code, message, nil))
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
