// Salesradar - Sales Targeting and Market Opportunity Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/salesradar

package logging

import (
	"strings"

	"github.com/rs/zerolog"
)

// AdminEvent is an audited administrative action such as a dataset reload.
type AdminEvent struct {
	Event     string
	Username  string
	IPAddress string
	UserAgent string
	Success   bool
	Error     string
	Details   map[string]string
}

// AuditLogger records administrative actions with sensitive values masked.
type AuditLogger struct {
	logger zerolog.Logger
}

// NewAuditLogger creates an audit logger on top of logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewAuditLogger(logger zerolog.Logger) *AuditLogger {
	return &AuditLogger{logger: logger.With().Str("component", "audit").Logger()}
}

// LogEvent writes an admin event. Failures are logged at warn level.
func (l *AuditLogger) LogEvent(event *AdminEvent) {
	e := l.logger.Info()
	status := "success"
	if !event.Success {
		e = l.logger.Warn()
		status = "failed"
	}
	e = e.Str("event", event.Event).Str("status", status)

	if event.Username != "" {
		e = e.Str("username", SanitizeUsername(event.Username))
	}
	if event.IPAddress != "" {
		e = e.Str("ip", event.IPAddress)
	}
	if event.UserAgent != "" {
		e = e.Str("user_agent", truncateString(event.UserAgent, 100))
	}
	if event.Error != "" {
		e = e.Str("error", SanitizeError(event.Error))
	}
	for k, v := range event.Details {
		e = e.Str(k, v)
	}
	e.Msg("admin action")
}

// LogAuthFailure records a rejected admin credential check.
func (l *AuditLogger) LogAuthFailure(username, ip, userAgent, reason string) {
	l.LogEvent(&AdminEvent{
		Event:     "admin_auth",
		Username:  username,
		IPAddress: ip,
		UserAgent: userAgent,
		Error:     reason,
	})
}

// LogReload records an admin-triggered dataset reload.
func (l *AuditLogger) LogReload(username, ip, path string, err error) {
	event := &AdminEvent{
		Event:     "dataset_reload",
		Username:  username,
		IPAddress: ip,
		Success:   err == nil,
		Details:   map[string]string{"path": path},
	}
	if err != nil {
		event.Error = err.Error()
	}
	l.LogEvent(event)
}

// SanitizeUsername masks a username, keeping the first 2 bytes.
func SanitizeUsername(username string) string {
	if username == "" {
		return ""
	}
	if len(username) <= 2 {
		return "***"
	}
	return username[:2] + "***"
}

// SanitizeError hides error text that may carry credentials and truncates
// the rest.
func SanitizeError(err string) string {
	lower := strings.ToLower(err)
	for _, pattern := range []string{"password", "secret", "token", "authorization", "hash"} {
		if strings.Contains(lower, pattern) {
			return "authentication error"
		}
	}
	return truncateString(err, 200)
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
