// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/weblab-go/internal/cache"
	"github.com/olegiv/weblab-go/internal/config"
	"github.com/olegiv/weblab-go/internal/geoip"
	"github.com/olegiv/weblab-go/internal/handler"
	"github.com/olegiv/weblab-go/internal/middleware"
	"github.com/olegiv/weblab-go/internal/rbac"
	"github.com/olegiv/weblab-go/internal/render"
	"github.com/olegiv/weblab-go/internal/scheduler"
	"github.com/olegiv/weblab-go/internal/session"
	"github.com/olegiv/weblab-go/internal/store"
	"github.com/olegiv/weblab-go/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "WebLab - web technology teaching labs\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  WEBLAB_SESSION_SECRET       Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  WEBLAB_DB_PATH              SQLite database path (default: ./data/weblab.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  WEBLAB_SERVER_PORT          Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  WEBLAB_ENV                  Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  WEBLAB_REDIS_URL            Redis URL for the stats cache (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  WEBLAB_GEOIP_DB_PATH        GeoLite2-Country.mmdb path (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  WEBLAB_VISIT_RETENTION_DAYS Purge visit logs older than N days (0 keeps forever)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  WEBLAB_SEED_DEMO_USERS      Create admin/user demo accounts (default: false)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}
	if *showVersion {
		_, _ = fmt.Printf("weblab %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Ensure data directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// Initialize database
	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Seed reference data
	ctx := context.Background()
	if err := store.SeedRoles(ctx, db); err != nil {
		return fmt.Errorf("seeding roles: %w", err)
	}
	if cfg.SeedDemoUsers {
		if err := store.SeedDemoUsers(ctx, db); err != nil {
			return fmt.Errorf("seeding demo users: %w", err)
		}
		slog.Info("demo accounts ready", "logins", []string{store.DemoAdminLogin, store.DemoUserLogin})
	}

	// Initialize session manager
	sessionManager := session.New(db, cfg.IsDevelopment())
	slog.Info("session manager initialized")

	// Optional GeoIP resolver for visit logging
	var geoResolver *geoip.Resolver
	if cfg.GeoIPEnabled() {
		geoResolver, err = geoip.Open(cfg.GeoIPDBPath)
		if err != nil {
			slog.Warn("geoip disabled", "error", err)
		} else {
			defer func() { _ = geoResolver.Close() }()
			slog.Info("geoip resolver initialized", "path", cfg.GeoIPDBPath)
		}
	}

	// Stats cache: Redis when configured, in-memory otherwise
	statsCache, err := cache.New(cache.Options{
		RedisURL:   cfg.RedisURL,
		Prefix:     cfg.CachePrefix,
		DefaultTTL: time.Duration(cfg.StatsCacheTTL) * time.Second,
	})
	if err != nil {
		return fmt.Errorf("initializing stats cache: %w", err)
	}
	defer func() { _ = statsCache.Close() }()
	if cfg.UseRedisCache() {
		slog.Info("stats cache initialized", "backend", "redis", "url", cfg.RedisURL)
	} else {
		slog.Info("stats cache initialized", "backend", "memory")
	}

	// Initialize template renderer
	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
		IsDev:          cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}
	slog.Info("template renderer initialized")

	// Start scheduled maintenance
	sched := scheduler.New(db, logger, cfg.VisitRetentionDays)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	// Login protection
	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	slog.Info("login protection initialized",
		"ip_rate_limit", "0.5 req/s",
		"max_failed_attempts", 5,
		"lockout_duration", "15m",
	)

	// CSRF protection
	csrfMiddleware := middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment()))
	slog.Info("CSRF protection initialized", "secure", !cfg.IsDevelopment())

	// Visit logging
	visitLogger := middleware.NewVisitLogger(db, geoResolver)

	// Handlers
	authHandler := handler.NewAuthHandler(db, renderer, sessionManager, loginProtection)
	usersHandler := handler.NewUsersHandler(db, renderer, sessionManager)
	statsHandler := handler.NewStatsHandler(db, renderer, statsCache, time.Duration(cfg.StatsCacheTTL)*time.Second)
	inspectHandler := handler.NewInspectHandler(renderer)
	docsHandler := handler.NewDocsHandler(renderer, web.Handbook)

	// Router
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(sessionManager.LoadAndSave)
	r.Use(csrfMiddleware)
	r.Use(middleware.LoadUser(sessionManager, db))
	r.Use(visitLogger.Middleware())

	// Static assets
	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		return fmt.Errorf("getting static fs: %w", err)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	// Public routes
	r.Get(handler.RouteRoot, usersHandler.Index)
	r.Get(handler.RouteLogin, authHandler.LoginForm)
	r.Post(handler.RouteLogin, authHandler.Login)
	r.Get(handler.RouteLogout, authHandler.Logout)
	r.Get(handler.RouteDocs, docsHandler.Handbook)

	r.Get(handler.RouteDemoURLParams, inspectHandler.URLParams)
	r.Get(handler.RouteDemoHeaders, inspectHandler.Headers)
	r.Get(handler.RouteDemoCookies, inspectHandler.Cookies)
	r.Get(handler.RouteDemoForm, inspectHandler.Form)
	r.Post(handler.RouteDemoForm, inspectHandler.Form)
	r.Get(handler.RouteDemoPhone, inspectHandler.Phone)
	r.Post(handler.RouteDemoPhone, inspectHandler.Phone)

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(sessionManager))

		r.With(middleware.RequireRight(sessionManager, rbac.CapCreateUser)).
			Get(handler.RouteUsers+handler.RouteSuffixNew, usersHandler.NewForm)
		r.With(middleware.RequireRight(sessionManager, rbac.CapCreateUser)).
			Post(handler.RouteUsers+handler.RouteSuffixNew, usersHandler.Create)
		r.With(middleware.RequireRight(sessionManager, rbac.CapDeleteUser)).
			Post(handler.RouteUsersID+handler.RouteSuffixDelete, usersHandler.Delete)

		// Self-or-admin decisions happen inside the handlers
		r.Get(handler.RouteUsersID, usersHandler.View)
		r.Get(handler.RouteUsersID+handler.RouteSuffixEdit, usersHandler.EditForm)
		r.Post(handler.RouteUsersID+handler.RouteSuffixEdit, usersHandler.Edit)

		r.Get(handler.RouteChangePassword, usersHandler.ChangePasswordForm)
		r.Post(handler.RouteChangePassword, usersHandler.ChangePassword)

		r.With(middleware.RequireRight(sessionManager, rbac.CapViewOwnLogs)).
			Get(handler.RouteLogs, statsHandler.Logs)

		r.Get(handler.RouteStatsPages, statsHandler.PageStats)
		r.Get(handler.RouteStatsUsers, statsHandler.UserStats)
		r.Get(handler.RouteStatsPages+handler.RouteSuffixExport, statsHandler.ExportPageStats)
		r.Get(handler.RouteStatsUsers+handler.RouteSuffixExport, statsHandler.ExportUserStats)
	})

	// Create server with appropriate timeouts
	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
