package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vishalmadargaon/Flight-delay-predictor/config"
	"github.com/vishalmadargaon/Flight-delay-predictor/database"
	"github.com/vishalmadargaon/Flight-delay-predictor/handlers"
	"github.com/vishalmadargaon/Flight-delay-predictor/inference"
	"github.com/vishalmadargaon/Flight-delay-predictor/logger"
	"github.com/vishalmadargaon/Flight-delay-predictor/metrics"
	"github.com/vishalmadargaon/Flight-delay-predictor/middleware"
	"github.com/vishalmadargaon/Flight-delay-predictor/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logg, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logg.Sync()

	if !cfg.Log.Dev {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.Database)
	if err != nil {
		logg.Fatal("Failed to connect to database", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}
	defer database.Close(db)
	if err := database.Initialize(db); err != nil {
		logg.Fatal("Failed to initialize schema", zap.Error(err))
	}

	engine, err := inference.Load(cfg.Model.Dir)
	if err != nil {
		logg.Error("model artifacts unavailable, predictions will fail", zap.String("dir", cfg.Model.Dir), zap.Error(err))
		engine = inference.Unavailable(err)
	} else {
		logg.Info("model artifacts loaded", zap.String("dir", cfg.Model.Dir))
	}

	cache, err := services.NewCacheService(cfg.Redis, logg)
	if err != nil {
		logg.Warn("redis unavailable, running without cache and live updates", zap.Error(err))
	}
	defer cache.Close()

	sessions := middleware.NewSessions(services.NewAuthService(cfg.Session), cfg.Session, logg)
	router, err := handlers.NewRouter(cfg, handlers.Deps{
		Accounts:    services.NewAccountService(db, services.NewPasswordHasher(cfg.Security), logg),
		Predictions: services.NewPredictionService(db, cache, logg),
		Cache:       cache,
		Sessions:    sessions,
		Engine:      engine,
		Log:         logg,
	})
	if err != nil {
		logg.Fatal("Failed to build router", zap.Error(err))
	}

	if cfg.Security.PasswordHashing == config.HashingPlain {
		logg.Warn("passwords are stored in plaintext, set PASSWORD_HASHING=bcrypt to hash them")
	}

	if cfg.Server.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.Server.MetricsAddr, logg); err != nil {
				logg.Error("metrics server stopped", zap.Error(err))
			}
		}()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logg.Info("Starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logg.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error("graceful shutdown failed", zap.Error(err))
	}
}
