// Package bootstrap builds the storage backend, transport and session from config.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/bryanwahyu/riskscope/internal/application"
	appanalysis "github.com/bryanwahyu/riskscope/internal/application/analysis"
	"github.com/bryanwahyu/riskscope/internal/application/history"
	"github.com/bryanwahyu/riskscope/internal/config"
	domain "github.com/bryanwahyu/riskscope/internal/domain/analysis"
	mysqlp "github.com/bryanwahyu/riskscope/internal/infra/db/mysql"
	"github.com/bryanwahyu/riskscope/internal/infra/db/postgres"
	"github.com/bryanwahyu/riskscope/internal/infra/db/sqlite"
	"github.com/bryanwahyu/riskscope/internal/infra/storage"
	"github.com/bryanwahyu/riskscope/internal/infra/transport/httpapi"
	"github.com/bryanwahyu/riskscope/internal/infra/transport/openai"
	"github.com/bryanwahyu/riskscope/internal/infra/transport/static"
	"github.com/bryanwahyu/riskscope/internal/middleware"
)

// Store is an opened KeyValueStore plus whatever must be closed with it.
type Store struct {
	KV domain.KeyValueStore
	DB *sql.DB // nil unless the driver is database backed
}

func (s *Store) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// HealthCheckers returns the checks the HTTP shell exposes on /health.
func (s *Store) HealthCheckers(key string) map[string]middleware.HealthChecker {
	checks := map[string]middleware.HealthChecker{
		"history": &middleware.StoreHealthChecker{KV: s.KV, Key: key},
	}
	if s.DB != nil {
		checks["database"] = &middleware.DatabaseHealthChecker{DB: s.DB}
	}
	return checks
}

// OpenStore connects the configured storage driver.
func OpenStore(ctx context.Context, cfg config.StorageConfig) (*Store, error) {
	switch cfg.Driver {
	case "memory":
		return &Store{KV: storage.NewMemory()}, nil
	case "file":
		f, err := storage.NewFile(cfg.Path)
		if err != nil {
			return nil, err
		}
		return &Store{KV: f}, nil
	case "sqlite":
		db, err := sqlite.Open(ctx, cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("sqlite open: %w", err)
		}
		return &Store{KV: sqlite.NewKVRepository(db), DB: db}, nil
	case "mysql":
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, fmt.Errorf("mysql connect: %w", err)
		}
		return &Store{KV: mysqlp.NewKVRepository(db), DB: db}, nil
	case "postgres":
		db, err := postgres.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, fmt.Errorf("postgres connect: %w", err)
		}
		return &Store{KV: postgres.NewKVRepository(db), DB: db}, nil
	case "minio":
		m := cfg.Minio
		obj, err := storage.NewObject(ctx, m.Endpoint, m.Region, m.BucketName, m.Prefix, m.AccessKey, m.SecretKey, m.UseSSL)
		if err != nil {
			return nil, fmt.Errorf("minio init: %w", err)
		}
		return &Store{KV: obj}, nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// NewTransport builds the configured TransportClient.
func NewTransport(cfg config.TransportConfig) (domain.Transport, error) {
	switch cfg.Mode {
	case "http":
		return httpapi.NewClient(cfg.Endpoint, cfg.Timeout()), nil
	case "openai":
		key := cfg.OpenAIKey()
		if key == "" {
			return nil, fmt.Errorf("openai transport: no API key (set transport.openai.apiKey or $%s)", cfg.OpenAI.APIKeyEnv)
		}
		return openai.NewClient(key, cfg.OpenAI.BaseURL, cfg.OpenAI.Model), nil
	case "static":
		if cfg.StaticPayload == "" {
			return static.Sample(), nil
		}
		return static.New([]byte(cfg.StaticPayload))
	default:
		return nil, fmt.Errorf("unknown transport mode %q", cfg.Mode)
	}
}

// NewSession wires transport and history into an AnalysisSession.
func NewSession(ctx context.Context, cfg *config.Config, renderer domain.Renderer) (*appanalysis.Session, *Store, error) {
	store, err := OpenStore(ctx, cfg.Storage)
	if err != nil {
		return nil, nil, err
	}
	tr, err := NewTransport(cfg.Transport)
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	log.Printf("session ready transport=%s storage=%s key=%s", cfg.Transport.Mode, cfg.Storage.Driver, cfg.Storage.Key)

	return &appanalysis.Session{
		Transport: tr,
		History:   history.NewStore(store.KV, cfg.Storage.Key),
		Renderer:  renderer,
		Clock:     application.SystemClock{},
	}, store, nil
}
