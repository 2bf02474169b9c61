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

	"coop-pos/internal/ai"
	"coop-pos/internal/auth"
	"coop-pos/internal/config"
	"coop-pos/internal/database"
	"coop-pos/internal/handlers"
	"coop-pos/internal/middleware"
	"coop-pos/internal/pos"
	"coop-pos/internal/telemetry"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	// Money goes out as JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal("Tracing setup failed: ", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("Database connection failed: ", err)
	}
	if cfg.Seed {
		if err := database.Seed(db); err != nil {
			log.Fatal("Seeding failed: ", err)
		}
	}

	service := pos.NewService(db, pos.Options{
		EnforceCatalogPrice: cfg.EnforceCatalogPrice,
		CurrencyScale:       cfg.CurrencyScale,
		Metrics:             pos.NewMetrics(prometheus.DefaultRegisterer),
	})

	if err := os.MkdirAll("./uploads", 0o755); err != nil {
		log.Fatal("Cannot create upload directory: ", err)
	}
	h := &handlers.Handler{
		DB:        db,
		POS:       service,
		Tokens:    auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL),
		Agent:     ai.NewAgent(db, cfg.GeminiAPIKey),
		UploadDir: "./uploads",
		BaseURL:   cfg.BaseURL,
	}
	if !h.Agent.Enabled() {
		log.Println("GEMINI_API_KEY not set, /api/ask is disabled")
	}

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	r.Use(middleware.RequestID())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", handlers.IdempotencyHeader, middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "Location", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	h.Routes(r, handlers.RouteOptions{
		AllowRegistration:  cfg.AllowRegistration,
		LoginRatePerMinute: cfg.LoginRatePerMinute,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Println("Server starting on " + cfg.BaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed to start: ", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown: %v", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Printf("Tracing shutdown: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
