// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"database/sql"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/mileusna/useragent"

	"github.com/olegiv/weblab-go/internal/geoip"
	"github.com/olegiv/weblab-go/internal/store"
)

// VisitLogger records one visit_logs row per qualifying request. Must run
// after LoadUser so authenticated visits carry the user reference.
type VisitLogger struct {
	queries  *store.Queries
	resolver *geoip.Resolver // nil disables country lookup
}

// NewVisitLogger creates a visit logger. resolver may be nil.
func NewVisitLogger(db *sql.DB, resolver *geoip.Resolver) *VisitLogger {
	return &VisitLogger{
		queries:  store.New(db),
		resolver: resolver,
	}
}

// Middleware returns the visit-logging middleware. The insert is
// best-effort: a store failure is logged and never fails the request.
func (v *VisitLogger) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if shouldLogVisit(r) {
				v.record(r)
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (v *VisitLogger) record(r *http.Request) {
	ua := useragent.Parse(r.UserAgent())

	params := store.CreateVisitParams{
		Path:      r.URL.Path,
		Browser:   ua.Name,
		OS:        ua.OS,
		CreatedAt: time.Now(),
	}
	if user := GetUser(r); user != nil {
		params.UserID = sql.NullInt64{Int64: user.ID, Valid: true}
	}
	if v.resolver != nil {
		params.Country = v.resolver.Country(clientIP(r))
	}

	if err := v.queries.CreateVisit(r.Context(), params); err != nil {
		slog.Error("failed to record visit", "error", err, "path", r.URL.Path)
	}
}

// shouldLogVisit filters out static assets and favicon-style noise.
func shouldLogVisit(r *http.Request) bool {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		return false
	}

	path := r.URL.Path
	for _, prefix := range []string{"/static/", "/favicon.", "/robots.txt", "/.well-known/"} {
		if strings.HasPrefix(path, prefix) {
			return false
		}
	}

	pathLower := strings.ToLower(path)
	for _, ext := range []string{".css", ".js", ".png", ".jpg", ".svg", ".ico", ".woff", ".woff2", ".txt"} {
		if strings.HasSuffix(pathLower, ext) {
			return false
		}
	}

	return true
}

// clientIP strips the port from RemoteAddr. Behind chi's RealIP
// middleware this is the originating client address.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
