package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/MattyO101/Legalassist-MPV/internal/analyses"
	"github.com/MattyO101/Legalassist-MPV/internal/analyses/recommendations"
	"github.com/MattyO101/Legalassist-MPV/internal/auth"
	"github.com/MattyO101/Legalassist-MPV/internal/authclient"
	"github.com/MattyO101/Legalassist-MPV/internal/documents"
	sharedauth "github.com/MattyO101/Legalassist-MPV/internal/shared/auth"
	"github.com/MattyO101/Legalassist-MPV/internal/shared/config"
	"github.com/MattyO101/Legalassist-MPV/internal/shared/metrics"
	"github.com/MattyO101/Legalassist-MPV/internal/shared/server"
	"github.com/MattyO101/Legalassist-MPV/internal/shared/server/middleware"
	"github.com/MattyO101/Legalassist-MPV/internal/shared/storage/db"
	"github.com/MattyO101/Legalassist-MPV/internal/shared/storage/object"
	gcsstore "github.com/MattyO101/Legalassist-MPV/internal/shared/storage/object/gcs"
	localstore "github.com/MattyO101/Legalassist-MPV/internal/shared/storage/object/local"
	s3store "github.com/MattyO101/Legalassist-MPV/internal/shared/storage/object/s3"
	"github.com/MattyO101/Legalassist-MPV/internal/shared/telemetry"
	"github.com/MattyO101/Legalassist-MPV/internal/templates"
	"github.com/MattyO101/Legalassist-MPV/internal/templates/export"
)

// App is one wired service: its router plus the dependencies tests and
// commands reach into.
type App struct {
	Config    config.Config
	Router    *gin.Engine
	Datastore *Datastore

	AuthService      *auth.Service
	DocumentsService *documents.Service
	AnalysesService  *analyses.Service
	TemplatesService *templates.Service

	closers []func() error
}

// Close releases the datastore and any cache connections.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func newApp(ctx context.Context, cfg config.Config) (*App, middleware.Limiter, error) {
	ds, err := OpenDatastore(ctx, cfg, db.ServicePool().FromEnv())
	if err != nil {
		return nil, nil, err
	}
	// Mongo repos rely on their unique indexes, so build them before serving.
	// Postgres schema changes stay with legalctl migrate.
	if ds.Kind() == KindMongo {
		if err := ds.Migrate(ctx); err != nil {
			_ = ds.Close()
			return nil, nil, fmt.Errorf("mongo indexes: %w", err)
		}
	}
	app := &App{Config: cfg, Datastore: ds}
	app.closers = append(app.closers, ds.Close)

	limiter, closeLimiter := buildLimiter(cfg)
	if closeLimiter != nil {
		app.closers = append(app.closers, closeLimiter)
	}
	return app, limiter, nil
}

// BuildAuth wires the authentication service.
func BuildAuth(ctx context.Context, cfg config.Config) (*App, error) {
	app, limiter, err := newApp(ctx, cfg)
	if err != nil {
		return nil, err
	}

	issuer := sharedauth.NewIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, nil)
	app.AuthService = &auth.Service{
		Users:  app.Datastore.Users(),
		Tokens: issuer,
		Hasher: auth.BcryptHasher{Cost: cfg.BcryptCost},
	}

	r, api := server.NewEngine(cfg, limiter)
	auth.NewHandler(app.AuthService, !cfg.IsProduction()).RegisterRoutes(api, middleware.Auth(issuer))
	app.Router = r
	return app, nil
}

// BuildDocuments wires document upload, analysis and recommendations.
func BuildDocuments(ctx context.Context, cfg config.Config) (*App, error) {
	app, limiter, err := newApp(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	recs := app.Datastore.Recommendations()
	app.DocumentsService = &documents.Service{
		Store:         store,
		Repo:          app.Datastore.Documents(),
		Dependents:    recs,
		MaxUploadSize: cfg.MaxUploadSize,
	}
	app.AnalysesService = &analyses.Service{
		Docs:   app.DocumentsService,
		Repo:   recs,
		Engine: recommendations.NewEngine(),
	}

	r, api := server.NewEngine(cfg, limiter)
	r.GET("/metrics", metrics.Handler())
	authed := api.Group("", middleware.Auth(buildVerifier(cfg)))
	documents.NewHandler(app.DocumentsService).RegisterRoutes(authed)
	analyses.NewHandler(app.AnalysesService).RegisterRoutes(authed)
	app.Router = r
	return app, nil
}

// BuildTemplates wires the template catalogue and seeds it when empty.
func BuildTemplates(ctx context.Context, cfg config.Config) (*App, error) {
	app, limiter, err := newApp(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app.TemplatesService = &templates.Service{
		Templates:     app.Datastore.Templates(),
		UserTemplates: app.Datastore.UserTemplates(),
		Exporter:      export.New(cfg.ExportDir),
	}
	if _, err := app.TemplatesService.Seed(ctx); err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("seed templates: %w", err)
	}

	r, api := server.NewEngine(cfg, limiter)
	r.GET("/metrics", metrics.Handler())
	h := templates.NewHandler(app.TemplatesService)
	h.RegisterRoutes(api, middleware.Auth(buildVerifier(cfg)))
	h.RegisterDownloads(r)
	app.Router = r
	return app, nil
}

// buildVerifier delegates to the auth service when AUTH_SERVICE_URL is set and
// otherwise verifies tokens locally with the shared secret.
func buildVerifier(cfg config.Config) middleware.TokenVerifier {
	if cfg.AuthServiceURL != "" {
		return authclient.New(cfg.AuthServiceURL, cfg.AuthClientTimeout)
	}
	return sharedauth.NewIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, nil)
}

func buildLimiter(cfg config.Config) (middleware.Limiter, func() error) {
	if cfg.RedisAddr == "" {
		return middleware.NewRateLimiter(nil), nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	telemetry.Info("bootstrap.redis_limiter", map[string]any{"addr": cfg.RedisAddr})
	return middleware.NewRedisLimiter(client, "ratelimit:"+cfg.Service), client.Close
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	case "gcs":
		return gcsstore.New(ctx, cfg.GCSBucket, cfg.GCSPrefix)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}
