package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/wadjakorntonsri/ctrltab/pkg/config"
	"github.com/wadjakorntonsri/ctrltab/pkg/ports"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services is everything the router dispatches to.
type Services struct {
	Auth        ports.AuthService
	Users       ports.UserService
	Collections ports.CollectionService
	Sections    ports.SectionService
	Links       ports.LinkService
	Icons       ports.IconStore
	Store       Pinger
}

// NewRouter creates and configures the main application router
func NewRouter(cfg *config.Config, svc Services, logger *slog.Logger) http.Handler {
	mw := NewMiddleware(svc.Auth, cfg.CORSOrigin, logger)
	authHandler := NewAuthHandler(cfg, svc.Auth)
	collections := NewCollectionHandler(svc.Collections)
	sections := NewSectionHandler(svc.Sections)
	links := NewLinkHandler(svc.Links)
	uploads := NewUploadHandler(svc.Icons)
	admin := NewAdminHandler(svc.Users)

	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("GET /api/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := svc.Store.Ping(ctx); err != nil {
			loggerFrom(r.Context()).Warn("readiness check failed", "error", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	})
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("GET /uploads/icons/{name}", uploads.ServeIcon)
	if cfg.GoogleClientID != "" {
		mux.HandleFunc("GET /auth/google/login", authHandler.GoogleLogin)
		mux.HandleFunc("GET /auth/google/callback", authHandler.GoogleCallback)
	}
	mux.HandleFunc("GET /auth/logout", authHandler.Logout)

	// Protected routes
	protected := http.NewServeMux()
	protected.HandleFunc("GET /api/auth/verify", authHandler.Verify)
	protected.HandleFunc("POST /api/auth/change-password", authHandler.ChangePassword)
	protected.HandleFunc("GET /api/auth/preferences", authHandler.GetPreferences)
	protected.HandleFunc("PUT /api/auth/preferences", authHandler.UpdatePreferences)

	protected.HandleFunc("GET /api/collections", collections.ListCollections)
	protected.HandleFunc("POST /api/collections", collections.CreateCollection)
	protected.HandleFunc("PUT /api/collections/reorder", collections.ReorderCollections)
	protected.HandleFunc("PUT /api/collections/{id}", collections.UpdateCollection)
	protected.HandleFunc("DELETE /api/collections/{id}", collections.DeleteCollection)
	protected.HandleFunc("GET /api/dashboard/{collectionId}", collections.Dashboard)

	protected.HandleFunc("GET /api/collections/{id}/sections", sections.ListSections)
	protected.HandleFunc("POST /api/collections/{id}/sections", sections.CreateSection)
	protected.HandleFunc("PUT /api/collections/{id}/sections/reorder", sections.ReorderSections)
	protected.HandleFunc("PUT /api/sections/{id}", sections.UpdateSection)
	protected.HandleFunc("DELETE /api/sections/{id}", sections.DeleteSection)

	protected.HandleFunc("GET /api/sections/{id}/links", links.ListLinks)
	protected.HandleFunc("POST /api/sections/{id}/links", links.CreateLink)
	protected.HandleFunc("PUT /api/sections/{id}/links/reorder", links.ReorderLinks)
	protected.HandleFunc("PUT /api/links/{id}", links.UpdateLink)
	protected.HandleFunc("DELETE /api/links/{id}", links.DeleteLink)

	protected.HandleFunc("POST /api/upload/icon", uploads.UploadIcon)

	// Admin routes
	adminMux := http.NewServeMux()
	adminMux.HandleFunc("GET /api/admin/users", admin.ListUsers)
	adminMux.HandleFunc("POST /api/admin/users", admin.CreateUser)
	adminMux.HandleFunc("PUT /api/admin/users/{id}", admin.UpdateUser)
	adminMux.HandleFunc("DELETE /api/admin/users/{id}", admin.DeleteUser)
	protected.Handle("/api/admin/", mw.RequireAdmin(adminMux))

	mux.Handle("/api/", mw.RequireAuth(protected))

	return mw.WithRequestLog(mux)
}
