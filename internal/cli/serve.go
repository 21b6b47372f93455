package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/mwhitfield/distress-engine/internal/handlers"
	"github.com/mwhitfield/distress-engine/internal/middleware"
	"github.com/mwhitfield/distress-engine/internal/repository"
	"github.com/mwhitfield/distress-engine/internal/scoring"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long:  "Serves the scored-lead listing and on-demand property scoring over HTTP.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}

	log.Info("Starting distress engine API", map[string]interface{}{
		"version":     handlers.APIVersion,
		"environment": cfg.Server.Env,
		"port":        cfg.Server.Port,
	})

	ctx := context.Background()
	db, err := openDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Middleware order: RequestID -> Logger -> Recovery -> CORS
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(cfg.CORS.Origins))

	healthHandler := handlers.NewHealthHandler(db, cfg.Server.Env)
	router.GET("/health", healthHandler.Health)
	router.GET("/health/ready", healthHandler.Ready)
	router.GET("/api/v1/info", healthHandler.Info)

	propertyRepo := repository.NewPropertyRepository(db)
	signalRepo := repository.NewSignalRepository(db)
	scoreRepo := repository.NewScoreRepository(db)

	engine := scoring.NewEngine(cfg.Scoring.QualifiedThreshold, log)
	store := scoring.NewStore(scoreRepo, log)
	scoreService := scoring.NewService(propertyRepo, signalRepo, engine, store, log)

	leadHandler := handlers.NewLeadHandler(scoreRepo, scoreService)
	propertyHandler := handlers.NewPropertyHandler(propertyRepo, signalRepo)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/leads", leadHandler.List)
		v1.GET("/properties/:parcel_id/score", leadHandler.Score)
		v1.GET("/properties/:parcel_id/signals", propertyHandler.Signals)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Info("Server listening", map[string]interface{}{
			"port": cfg.Server.Port,
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start", err, nil)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", err, map[string]interface{}{
			"timeout": shutdownTimeout.String(),
		})
	}

	log.Info("Server exited", nil)
	return nil
}
