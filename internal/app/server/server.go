// Package server assembles the gin engine and runs it with its background
// jobs until the process is asked to stop.
package server

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"arvista/config"
	"arvista/database"
	routes "arvista/internal/app/http"
	"arvista/internal/app/http/middleware"
	"arvista/internal/app/jobs"
	"arvista/internal/infra/cache"
	"arvista/internal/infra/mailer"
	"arvista/internal/infra/metrics"
	"arvista/internal/infra/storage"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 15 * time.Second

// NewEngine builds the router with the full middleware stack.
func NewEngine(lim routes.Limiters) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(), middleware.Recovery(), metrics.Middleware())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     splitOrigins(config.CORS_ORIGIN),
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Idempotency-Key", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, lim)
	return r
}

func splitOrigins(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		out = []string{"http://localhost:3000"}
	}
	return out
}

// Run connects every backing service, serves HTTP and shuts down gracefully
// on SIGINT/SIGTERM. The scheduler is stopped before the listener.
func Run() error {
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database.InitDB()
	if err := database.Migrate(database.DB); err != nil {
		return err
	}

	if err := cache.Connect(ctx, config.REDIS_ADDR, config.REDIS_PASSWORD); err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, catalog cache disabled")
	}
	defer cache.Close()

	if err := storage.Init(ctx); err != nil {
		return err
	}
	mailer.Init()

	lim := routes.DefaultLimiters()
	scheduler, err := jobs.Start(jobs.Options{
		DB:              database.DB,
		PendingOrderTTL: config.PENDING_ORDER_TTL,
		Limiters:        []jobs.Cleaner{lim.Auth, lim.Forms},
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + config.PORT,
		Handler:           NewEngine(lim),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Arvista API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		<-scheduler.Stop().Done()
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	<-scheduler.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
