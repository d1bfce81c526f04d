package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/inamate/vecpad/internal/auth"
	"github.com/inamate/vecpad/internal/codec"
	"github.com/inamate/vecpad/internal/collab"
	"github.com/inamate/vecpad/internal/config"
	"github.com/inamate/vecpad/internal/discovery"
	"github.com/inamate/vecpad/internal/document"
	"github.com/inamate/vecpad/internal/drawing"
	"github.com/inamate/vecpad/internal/engine"
	"github.com/inamate/vecpad/internal/export"
	mw "github.com/inamate/vecpad/internal/middleware"
	"github.com/inamate/vecpad/internal/store"
)

func main() {
	if len(os.Args) == 3 && os.Args[1] == "hash-password" {
		hash, err := auth.HashPassword(os.Args[2])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	opts := engine.Options{
		Margin:       cfg.ViewMargin,
		ZoomStep:     cfg.ZoomStep,
		HitTolerance: cfg.HitTolerance,
	}
	if cfg.ScreenHitTolerance {
		opts.ScreenHitTolerance = cfg.HitTolerance
	}

	authService := auth.NewService(cfg.OperatorUser, cfg.OperatorHash, cfg.JWTSecret)
	authHandler := auth.NewHandler(authService)

	drawingService := drawing.NewService(st, opts)
	drawingHandler := drawing.NewHandler(drawingService)
	exportHandler := export.NewHandler(drawingService, cfg.ExportWidth, cfg.ExportHeight)

	// Document loader for the collaboration hub
	docLoader := func(ctx context.Context, drawingID string) (*document.Document, error) {
		doc, _, err := drawingService.Load(ctx, drawingID)
		return doc, err
	}

	hub := collab.NewHub(docLoader, drawingService.Save)
	go hub.Run()
	drawingService.SetGuard(hub)

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)

	// Auth routes (public)
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok","formatVersion":%d}`, codec.Version)
	}).Methods("GET")

	// Protected API routes; open to the LAN when no operator password is set
	if authService.Open() {
		slog.Warn("OPERATOR_PASSWORD_HASH is not set, API is open to anonymous requests")
	}
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.AuthMiddleware)
	drawingHandler.Routes(api)
	exportHandler.Routes(api)

	// WebSocket endpoint
	r.HandleFunc("/ws/drawing/{drawingId}", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, hub, authService, drawingService, cfg)
	})

	if cfg.MDNSAdvertise {
		adv, err := discovery.Advertise(cfg.Port, map[string]string{
			"version": strconv.Itoa(codec.Version),
			"api":     "/api",
		})
		if err != nil {
			slog.Warn("mdns advertisement disabled", "error", err)
		} else {
			defer adv.Shutdown()
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	// CORS wraps the router so preflight requests never reach route matching.
	srv := &http.Server{
		Addr:         addr,
		Handler:      mw.CORS(cfg.Origins())(r),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Stop hub first to save all dirty drawings
		hub.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.DatabaseURL != "" {
		return store.NewPGStore(ctx, cfg.DatabaseURL)
	}
	return store.NewFileStore(cfg.DataDir)
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, hub *collab.Hub, authSvc *auth.Service, drawings *drawing.Service, cfg *config.Config) {
	drawingID := mux.Vars(r)["drawingId"]

	var userID, displayName string
	token, err := auth.TokenFromRequest(r, true)
	switch {
	case err == nil:
		userID, err = authSvc.ValidateToken(token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		if displayName = authSvc.DisplayName(userID); displayName == "" {
			displayName = cfg.OperatorUser
		}
	case authSvc.Open():
		// Without an operator account the server is open to the LAN.
		userID = "anon-" + uuid.New().String()[:8]
		displayName = "Anonymous"
	default:
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	if _, err := drawings.Get(r.Context(), drawingID); err != nil {
		http.Error(w, "drawing not found", http.StatusNotFound)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: cfg.OriginHosts(),
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	clientID := uuid.New().String()
	client := collab.NewClient(hub, conn, userID, displayName, drawingID, clientID)
	client.Serve(r.Context())
}
