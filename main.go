package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"promoshow/config"
	"promoshow/database"
	"promoshow/handlers"
	"promoshow/middleware"
	"promoshow/routes"
	"promoshow/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:   "promoshow",
	Short: "Promotional image carousel with share and download",
	Long: `promoshow serves a carousel of promotional images backed by a document
store and an object store. Run without a subcommand to start the HTTP server.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	registerCommands(rootCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// bootstrap reads the environment and returns a validated config with a logger.
func bootstrap() (config.Config, *zap.Logger, error) {
	// Load environment variables
	if err := config.LoadEnv(); err != nil {
		return config.Config{}, nil, fmt.Errorf("load .env: %w", err)
	}
	cfg := config.Load()

	logger, err := utils.NewLogger(cfg.Env)
	if err != nil {
		return cfg, nil, fmt.Errorf("init logger: %w", err)
	}

	// Validate critical environment variables
	if err := config.ValidateEnv(cfg, logger); err != nil {
		logger.Error("environment validation failed", zap.Error(err))
		return cfg, logger, err
	}
	return cfg, logger, nil
}

func serve(ctx context.Context) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", zap.Error(err))
		return err
	}
	defer a.close()

	// Create default admin user if not exists
	if err := database.SeedAdmin(ctx, a.docs, cfg.UsersCollection, cfg.AdminUsername, cfg.AdminPassword, logger); err != nil {
		logger.Warn("could not create default admin", zap.Error(err))
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	// Limit multipart form memory to 10MB
	r.MaxMultipartMemory = 10 << 20

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", handlers.ViewerHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
	}))

	loginLimiter := middleware.NewRateLimiter(10, time.Minute, logger)
	defer loginLimiter.Stop()

	routes.SetupRoutes(r, routes.Deps{
		Users:           a.docs,
		UsersCollection: cfg.UsersCollection,
		Repo:            a.repo,
		Viewers:         a.viewers,
		Cache:           a.cache,
		DownloadName:    cfg.DownloadName,
		LoginLimiter:    loginLimiter,
		Logger:          logger,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	pruneDone := make(chan struct{})
	go pruneLoop(a, cfg.CacheMaxAge, pruneDone)
	defer close(pruneDone)

	// Run server in a goroutine
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		logger.Error("failed to start server", zap.Error(err))
		return err
	}
	logger.Info("shutting down server")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
		return err
	}

	logger.Info("server exited gracefully")
	return nil
}

// pruneLoop removes cached downloads older than maxAge and closes idle
// viewer carousels until done is closed.
func pruneLoop(a *app, maxAge time.Duration, done <-chan struct{}) {
	if maxAge <= 0 {
		return
	}
	every := maxAge / 4
	if every < time.Minute {
		every = time.Minute
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if closed := a.viewers.Sweep(); closed > 0 {
				a.logger.Info("idle viewers closed", zap.Int("count", closed))
			}
			n, err := a.cache.Prune(maxAge)
			if err != nil {
				a.logger.Warn("cache prune failed", zap.Error(err))
				continue
			}
			if n > 0 {
				a.logger.Info("cache pruned", zap.Int("removed", n))
			}
		}
	}
}
