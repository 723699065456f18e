// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/olegiv/weblab-go/internal/cache"
	"github.com/olegiv/weblab-go/internal/middleware"
	"github.com/olegiv/weblab-go/internal/model"
	"github.com/olegiv/weblab-go/internal/render"
	"github.com/olegiv/weblab-go/internal/store"
)

// VisitsPerPage is the number of visit log rows per page.
const VisitsPerPage = 10

// AnonymousUserLabel marks the unauthenticated bucket in user statistics.
const AnonymousUserLabel = "Unauthenticated user"

// utf8BOM is prepended to CSV exports so spreadsheet applications detect
// the encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Cache keys for the statistics aggregates.
const (
	cacheKeyPageStats = "stats:pages"
	cacheKeyUserStats = "stats:users"
)

// StatsHandler serves the visit log, aggregate statistics and CSV exports.
type StatsHandler struct {
	queries  *store.Queries
	renderer *render.Renderer
	cache    cache.Cache // nil disables caching
	cacheTTL time.Duration
}

// NewStatsHandler creates a new StatsHandler. c may be nil.
func NewStatsHandler(db *sql.DB, renderer *render.Renderer, c cache.Cache, cacheTTL time.Duration) *StatsHandler {
	return &StatsHandler{
		queries:  store.New(db),
		renderer: renderer,
		cache:    c,
		cacheTTL: cacheTTL,
	}
}

// VisitLogData holds data for the visit log template.
type VisitLogData struct {
	Visits     []model.VisitLog
	OwnOnly    bool
	Pagination Pagination
}

// Logs handles GET /logs - the visit log, newest first, paginated.
// Admin sees all visits; a regular user sees only their own.
func (h *StatsHandler) Logs(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetUser(r)
	if caller == nil {
		http.Redirect(w, r, middleware.LoginURL(r), http.StatusSeeOther)
		return
	}

	var userFilter sql.NullInt64
	if !caller.IsAdmin() {
		userFilter = sql.NullInt64{Int64: caller.ID, Valid: true}
	}

	total, err := h.queries.CountVisits(r.Context(), userFilter)
	if err != nil {
		logAndInternalError(w, "failed to count visits", "error", err)
		return
	}

	pagination := BuildPagination(ParsePageParam(r), total, VisitsPerPage, RouteLogs)
	visits, err := h.queries.ListVisits(r.Context(), store.ListVisitsParams{
		UserID: userFilter,
		Limit:  VisitsPerPage,
		Offset: pagination.Offset(),
	})
	if err != nil {
		logAndInternalError(w, "failed to list visits", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "pages/logs", render.TemplateData{
		Title: "Visit log",
		Data: VisitLogData{
			Visits:     visits,
			OwnOnly:    userFilter.Valid,
			Pagination: pagination,
		},
	}); err != nil {
		logAndInternalError(w, "failed to render visit log", "error", err)
	}
}

// PageStats handles GET /stats/pages - visit counts per path, descending.
func (h *StatsHandler) PageStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.pageStats(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to load page stats", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "pages/stats_pages", render.TemplateData{
		Title: "Visits by page",
		Data:  stats,
	}); err != nil {
		logAndInternalError(w, "failed to render page stats", "error", err)
	}
}

// UserStats handles GET /stats/users - visit counts per user, descending.
func (h *StatsHandler) UserStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.userStats(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to load user stats", "error", err)
		return
	}

	if err := h.renderer.Render(w, r, "pages/stats_users", render.TemplateData{
		Title: "Visits by user",
		Data:  stats,
	}); err != nil {
		logAndInternalError(w, "failed to render user stats", "error", err)
	}
}

// ExportPageStats handles GET /stats/pages/export - CSV download.
func (h *StatsHandler) ExportPageStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.pageStats(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to load page stats", "error", err)
		return
	}

	records := make([][]string, 0, len(stats)+1)
	records = append(records, []string{"#", "Page", "Visits"})
	for i, s := range stats {
		records = append(records, []string{
			strconv.Itoa(i + 1),
			s.Path,
			strconv.FormatInt(s.Count, 10),
		})
	}

	writeCSV(w, exportFilename("page_stats"), records)
}

// ExportUserStats handles GET /stats/users/export - CSV download.
func (h *StatsHandler) ExportUserStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.userStats(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to load user stats", "error", err)
		return
	}

	records := make([][]string, 0, len(stats)+1)
	records = append(records, []string{"#", "User", "Visits"})
	for i, s := range stats {
		name := s.FullName
		if name == "" {
			name = AnonymousUserLabel
		}
		records = append(records, []string{
			strconv.Itoa(i + 1),
			name,
			strconv.FormatInt(s.Count, 10),
		})
	}

	writeCSV(w, exportFilename("user_stats"), records)
}

// pageStats returns the per-page aggregates, via the cache when enabled.
func (h *StatsHandler) pageStats(ctx context.Context) ([]store.PageStatsRow, error) {
	var stats []store.PageStatsRow
	err := h.cached(ctx, cacheKeyPageStats, &stats, func() (any, error) {
		return h.queries.PageStats(ctx)
	})
	return stats, err
}

// userStats returns the per-user aggregates, via the cache when enabled.
func (h *StatsHandler) userStats(ctx context.Context) ([]store.UserStatsRow, error) {
	var stats []store.UserStatsRow
	err := h.cached(ctx, cacheKeyUserStats, &stats, func() (any, error) {
		return h.queries.UserStats(ctx)
	})
	return stats, err
}

// cached loads a JSON-encoded aggregate from the cache, falling back to
// the loader and storing the result. Cache failures degrade to a direct
// load, never to a request failure.
func (h *StatsHandler) cached(ctx context.Context, key string, dst any, load func() (any, error)) error {
	if h.cache != nil {
		if data, err := h.cache.Get(ctx, key); err == nil {
			if err := json.Unmarshal(data, dst); err == nil {
				return nil
			}
			slog.Warn("discarding undecodable cache entry", "key", key)
		}
	}

	value, err := load()
	if err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if h.cache != nil {
		if err := h.cache.Set(ctx, key, data, h.cacheTTL); err != nil {
			slog.Warn("failed to cache stats", "key", key, "error", err)
		}
	}
	return json.Unmarshal(data, dst)
}

// writeCSV sends records as an attachment with a UTF-8 byte-order mark.
func writeCSV(w http.ResponseWriter, filename string, records [][]string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if _, err := w.Write(utf8BOM); err != nil {
		slog.Error("failed to write CSV BOM", "error", err)
		return
	}

	cw := csv.NewWriter(w)
	if err := cw.WriteAll(records); err != nil {
		slog.Error("failed to write CSV", "error", err, "filename", filename)
	}
}

// exportFilename builds a timestamped attachment name like
// page_stats_20260102_150405.csv.
func exportFilename(prefix string) string {
	return prefix + "_" + time.Now().Format("20060102_150405") + ".csv"
}
