package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/stitchkit/stitchkit/backend-go/internal/asset"
	"github.com/stitchkit/stitchkit/backend-go/internal/auth"
	"github.com/stitchkit/stitchkit/backend-go/internal/catalog"
	"github.com/stitchkit/stitchkit/backend-go/internal/config"
	"github.com/stitchkit/stitchkit/backend-go/internal/db"
	"github.com/stitchkit/stitchkit/backend-go/internal/design"
	"github.com/stitchkit/stitchkit/backend-go/internal/engine"
	"github.com/stitchkit/stitchkit/backend-go/internal/export"
	"github.com/stitchkit/stitchkit/backend-go/internal/live"
	mw "github.com/stitchkit/stitchkit/backend-go/internal/middleware"
	"github.com/stitchkit/stitchkit/backend-go/internal/session"
)

// playgroundSessionID is a shared in-memory session that allows anonymous
// access and is never persisted.
const playgroundSessionID = "sess_playground"

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		slog.Error("ensure schema", "error", err)
		os.Exit(1)
	}

	queries := db.New(pool)

	cat := catalog.Default()
	if cfg.CatalogPath != "" {
		cat, err = catalog.LoadFile(cfg.CatalogPath)
		if err != nil {
			slog.Error("load catalog", "error", err, "path", cfg.CatalogPath)
			os.Exit(1)
		}
	}
	catalogJSON, err := json.Marshal(cat)
	if err != nil {
		slog.Error("marshal catalog", "error", err)
		os.Exit(1)
	}

	authService := auth.NewService(queries, cfg.JWTSecret)
	authHandler := auth.NewHandler(authService)

	sessionService := session.NewService(queries, cat)
	sessionHandler := session.NewHandler(sessionService)

	// Engine loader for the live hub: resume from the latest snapshot, or
	// start blank for the anonymous playground session.
	engineLoader := func(sessionID string) (*engine.Engine, error) {
		if sessionID == playgroundSessionID {
			return engine.NewEngine(cat, cfg.HistoryDepth), nil
		}
		// Background context since this runs in the hub goroutine
		state, err := sessionService.LoadDesign(context.Background(), sessionID)
		if err != nil {
			return nil, err
		}
		return engine.NewEngineAt(cat, state, cfg.HistoryDepth), nil
	}

	// Design saver for the live hub
	designSaver := func(sessionID string, doc design.ExportDocument) error {
		if sessionID == playgroundSessionID {
			return nil
		}
		return sessionService.SaveDesign(context.Background(), sessionID, doc)
	}

	hub := live.NewHub(engineLoader, designSaver)
	go hub.Run()

	assetHandler := asset.NewHandler(cfg.AssetDir)
	exportHandler := export.NewHandler(sessionService)

	origins := splitOrigins(cfg.AllowedOrigins)

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(origins))

	// Auth routes (public)
	r.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Catalog is public — the viewer needs it before login
	r.HandleFunc("/catalog", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write(catalogJSON)
	}).Methods("GET")

	// Print upload and retrieval (public — used by playground and
	// authenticated users)
	r.HandleFunc("/assets/upload", assetHandler.Upload).Methods("POST", "OPTIONS")
	r.PathPrefix("/assets/").Handler(assetHandler.Serve()).Methods("GET")

	// Protected API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.AuthMiddleware)

	api.HandleFunc("/me", authHandler.Me).Methods("GET")
	api.HandleFunc("/sessions", sessionHandler.List).Methods("GET")
	api.HandleFunc("/sessions", sessionHandler.Create).Methods("POST")
	api.HandleFunc("/sessions/{sessionId}", sessionHandler.Get).Methods("GET")
	api.HandleFunc("/sessions/{sessionId}", sessionHandler.Delete).Methods("DELETE")
	api.HandleFunc("/sessions/{sessionId}/design", sessionHandler.GetLatestDesign).Methods("GET")
	api.HandleFunc("/sessions/{sessionId}/export", exportHandler.ExportDesign).Methods("GET")

	// WebSocket endpoint
	r.HandleFunc("/ws/session/{sessionId}", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, hub, authService, sessionService, origins)
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Stop hub first to save all dirty designs
		slog.Info("saving all designs...")
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr, "garment", cat.GarmentID)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, hub *live.Hub, authSvc *auth.Service, sessions *session.Service, origins []string) {
	vars := mux.Vars(r)
	sessionID := vars["sessionId"]

	var userID string
	var displayName string

	// Playground session allows anonymous access
	if sessionID == playgroundSessionID {
		userID = "anon-" + uuid.New().String()[:8]
		displayName = "Anonymous"
	} else {
		// Auth via query param for real sessions
		token := r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}

		claims, err := authSvc.ValidateToken(token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		userID = claims.UserID
		displayName = claims.DisplayName

		owner, err := sessions.IsOwner(r.Context(), sessionID, userID)
		if err != nil {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		if !owner {
			http.Error(w, "not the session owner", http.StatusForbidden)
			return
		}
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: originPatterns(origins),
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	clientID := uuid.New().String()
	client := live.NewClient(hub, conn, userID, displayName, sessionID, clientID)

	hub.Register(client)

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}

func splitOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// originPatterns strips the scheme from configured origins for the websocket
// origin check.
func originPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimPrefix(o, "https://")
		o = strings.TrimPrefix(o, "http://")
		patterns = append(patterns, o)
	}
	return patterns
}
