package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"golang.org/x/sync/errgroup"

	"github.com/MattyO101/Legalassist-MPV/internal/analyses"
	"github.com/MattyO101/Legalassist-MPV/internal/documents"
	"github.com/MattyO101/Legalassist-MPV/internal/shared/config"
	"github.com/MattyO101/Legalassist-MPV/internal/shared/storage/db"
	"github.com/MattyO101/Legalassist-MPV/internal/shared/storage/mongodb"
	"github.com/MattyO101/Legalassist-MPV/internal/shared/telemetry"
	"github.com/MattyO101/Legalassist-MPV/internal/templates"
	"github.com/MattyO101/Legalassist-MPV/internal/users"
)

const (
	KindMemory   = "memory"
	KindPostgres = "postgres"
	KindMongo    = "mongo"
)

// Datastore is the persistence backend chosen from DATABASE_URL. At most one
// of SQL and Mongo is set; neither means in-memory repositories.
type Datastore struct {
	SQL   *sqlx.DB
	Mongo *mongo.Database

	mongoClient *mongo.Client
}

// OpenDatastore connects to the backend named by cfg.DatabaseURL. An empty
// URL selects in-memory repositories, which only dev-like environments allow.
// pool only applies to Postgres.
func OpenDatastore(ctx context.Context, cfg config.Config, pool db.Pool) (*Datastore, error) {
	url := strings.TrimSpace(cfg.DatabaseURL)
	switch {
	case url == "":
		if !cfg.IsDevLike() {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		telemetry.Warn("bootstrap.memory_datastore", map[string]any{"service": cfg.Service})
		return &Datastore{}, nil
	case mongodb.IsMongoURL(url):
		client, database, err := mongodb.Connect(ctx, url, cfg.DatabaseName)
		if err != nil {
			return nil, err
		}
		return &Datastore{Mongo: database, mongoClient: client}, nil
	case db.IsPostgresURL(url):
		sqlDB, err := db.Connect(ctx, url, pool)
		if err != nil {
			return nil, err
		}
		return &Datastore{SQL: sqlDB}, nil
	default:
		return nil, fmt.Errorf("unsupported DATABASE_URL scheme")
	}
}

func (d *Datastore) Kind() string {
	switch {
	case d.SQL != nil:
		return KindPostgres
	case d.Mongo != nil:
		return KindMongo
	default:
		return KindMemory
	}
}

// Migrate applies the SQL migrations or creates the Mongo indexes.
func (d *Datastore) Migrate(ctx context.Context) error {
	switch d.Kind() {
	case KindPostgres:
		return db.RunMigrations(ctx, d.SQL.DB)
	case KindMongo:
		g, gctx := errgroup.WithContext(ctx)
		for _, ix := range []interface {
			EnsureIndexes(context.Context) error
		}{
			users.NewMongoRepo(d.Mongo),
			documents.NewMongoRepo(d.Mongo),
			analyses.NewMongoRepo(d.Mongo),
			templates.NewMongoRepo(d.Mongo),
			templates.NewMongoUserRepo(d.Mongo),
		} {
			g.Go(func() error { return ix.EnsureIndexes(gctx) })
		}
		return g.Wait()
	default:
		return nil
	}
}

func (d *Datastore) Close() error {
	switch d.Kind() {
	case KindPostgres:
		return d.SQL.Close()
	case KindMongo:
		return mongodb.Disconnect(d.mongoClient)
	default:
		return nil
	}
}

func (d *Datastore) Users() users.Repo {
	switch d.Kind() {
	case KindPostgres:
		return &users.PGRepo{DB: d.SQL}
	case KindMongo:
		return users.NewMongoRepo(d.Mongo)
	default:
		return users.NewMemoryRepo()
	}
}

func (d *Datastore) Documents() documents.Repo {
	switch d.Kind() {
	case KindPostgres:
		return &documents.PGRepo{DB: d.SQL}
	case KindMongo:
		return documents.NewMongoRepo(d.Mongo)
	default:
		return documents.NewMemoryRepo()
	}
}

func (d *Datastore) Recommendations() analyses.Repo {
	switch d.Kind() {
	case KindPostgres:
		return &analyses.PGRepo{DB: d.SQL}
	case KindMongo:
		return analyses.NewMongoRepo(d.Mongo)
	default:
		return analyses.NewMemoryRepo()
	}
}

func (d *Datastore) Templates() templates.Repo {
	switch d.Kind() {
	case KindPostgres:
		return &templates.PGRepo{DB: d.SQL}
	case KindMongo:
		return templates.NewMongoRepo(d.Mongo)
	default:
		return templates.NewMemoryRepo()
	}
}

func (d *Datastore) UserTemplates() templates.UserRepo {
	switch d.Kind() {
	case KindPostgres:
		return &templates.PGUserRepo{DB: d.SQL}
	case KindMongo:
		return templates.NewMongoUserRepo(d.Mongo)
	default:
		return templates.NewMemoryUserRepo()
	}
}
