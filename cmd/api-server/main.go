package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"geonews/internal/auth"
	"geonews/internal/empathy"
	"geonews/internal/geo"
	"geonews/internal/livefeed"
	"geonews/internal/news"
	"geonews/pkg/config"
	"geonews/pkg/database"
	"geonews/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Logging.Level)

	dbCfg := database.DefaultConfig()
	if cfg.Database.Path != "" {
		dbCfg.Path = cfg.Database.Path
	}
	db := database.MustOpen(dbCfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	resolver, err := geo.FromConfig(cfg.Geocoder)
	if err != nil {
		log.Fatalf("geocoder: %v", err)
	}

	router := gin.Default()

	// Optional: avoid “trusted all proxies” warning
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	hub := livefeed.NewHub()
	router.GET("/ws", livefeed.WSHandler(hub))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": dbCfg.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":     "not_ready",
				"db_error":   err.Error(),
				"ws_clients": stats.Clients,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":     "ready",
			"db":         "ok",
			"ws_clients": stats.Clients,
		})
	})

	// News pipeline (public)
	newsRepo := news.NewRepo(db)
	pipeline := &news.Pipeline{
		Resolver:   resolver,
		Searcher:   news.NewClient(cfg.News),
		Repo:       newsRepo,
		Events:     hub,
		Log:        logger,
		MaxResults: cfg.News.MaxResults,
	}
	newsHandler := news.NewHandler(pipeline, newsRepo)
	newsHandler.RegisterRoutes(router.Group("/news"))

	// Auth gateway
	authClient := auth.NewClient(cfg.Auth)
	var verifier auth.Verifier = authClient
	if cfg.Auth.JWTSecret != "" {
		verifier = auth.LocalVerifier{Secret: []byte(cfg.Auth.JWTSecret)}
	}
	authHandler := auth.NewHandler(authClient, verifier)
	authHandler.RegisterRoutes(router.Group("/auth"))

	// Empathy toggles (protected)
	protected := router.Group("/news")
	protected.Use(auth.Middleware(verifier))
	empathyHandler := empathy.NewHandler(empathy.NewRepo(db), newsRepo)
	empathyHandler.RegisterRoutes(protected)

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.HTTP.Addr).Str("geocoder", resolver.Name()).Msg("HTTP API server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown error")
	}
	logger.Info().Msg("server stopped")
}
