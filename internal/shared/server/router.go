package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MattyO101/Legalassist-MPV/internal/services/health"
	"github.com/MattyO101/Legalassist-MPV/internal/shared/apierr"
	"github.com/MattyO101/Legalassist-MPV/internal/shared/config"
	"github.com/MattyO101/Legalassist-MPV/internal/shared/server/middleware"
	"github.com/MattyO101/Legalassist-MPV/internal/shared/server/respond"
	"github.com/MattyO101/Legalassist-MPV/internal/shared/telemetry"
)

const shutdownTimeout = 10 * time.Second

// NewEngine constructs the Gin engine with the shared middleware chain and
// health routes. It returns the engine and the rate limited /api group that
// feature handlers register on.
func NewEngine(cfg config.Config, limiter middleware.Limiter) (*gin.Engine, *gin.RouterGroup) {
	if cfg.IsDevLike() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	respond.SetProduction(cfg.IsProduction())

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.CORSAllowOrigin),
	)
	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, apierr.NotFound("Route not found"))
	})

	healthSvc := health.NewService(cfg.Service)
	r.GET("/health", func(c *gin.Context) {
		respond.OK(c, healthSvc.Status())
	})

	api := r.Group("/api")
	api.Use(middleware.RateLimit(limiter, middleware.RateLimitRule{
		Limit:  cfg.RateLimitMax,
		Window: cfg.RateLimitWindow,
	}))
	api.GET("/health", func(c *gin.Context) {
		respond.OK(c, healthSvc.ServiceStatus())
	})

	return r, api
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}

// Run serves handler on addr until ctx is cancelled, then drains in-flight
// requests.
func Run(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		telemetry.Info("server.listening", map[string]any{"addr": addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	telemetry.Info("server.shutdown", map[string]any{"addr": addr})
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
