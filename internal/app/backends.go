package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/heartmarshall/bazaar-backend/internal/adapter/cache"
	"github.com/heartmarshall/bazaar-backend/internal/adapter/docstore"
	"github.com/heartmarshall/bazaar-backend/internal/adapter/docstore/memory"
	"github.com/heartmarshall/bazaar-backend/internal/adapter/dynamo"
	"github.com/heartmarshall/bazaar-backend/internal/adapter/filestore"
	"github.com/heartmarshall/bazaar-backend/internal/adapter/postgres"
	"github.com/heartmarshall/bazaar-backend/internal/adapter/postgres/document"
	"github.com/heartmarshall/bazaar-backend/internal/adapter/s3blob"
	"github.com/heartmarshall/bazaar-backend/internal/config"
	"github.com/heartmarshall/bazaar-backend/internal/domain"
	"github.com/heartmarshall/bazaar-backend/internal/metrics"
	"github.com/heartmarshall/bazaar-backend/internal/transport/rest"
)

// MediaPath is where filesystem-backed photos are served.
const MediaPath = "/media"

type txRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type blobStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	ListAndResolve(ctx context.Context, prefix string) ([]string, error)
}

type listCache interface {
	Get(ctx context.Context) ([]domain.Bazaar, bool, error)
	Set(ctx context.Context, items []domain.Bazaar) error
	Invalidate(ctx context.Context) error
}

// Backends holds the gateways selected by configuration.
type Backends struct {
	Store  docstore.Store
	Tx     txRunner
	Blobs  blobStore
	Cache  listCache
	Media  http.Handler
	Checks map[string]rest.Pinger

	closers []func()
}

// Close releases connections in reverse order of opening.
func (b *Backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// OpenStore connects the document store and wraps it with read retries.
// The blob store and cache are not opened.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) (*Backends, error) {
	b := &Backends{Checks: make(map[string]rest.Pinger)}

	var raw docstore.Store
	switch cfg.Store.Backend {
	case config.StorePostgres:
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, pool.Close)
		raw = document.New(pool)
		b.Tx = postgres.NewTxManager(pool)
	case config.StoreDynamoDB:
		client, err := dynamo.NewClient(ctx, cfg.DynamoDB.Region, cfg.DynamoDB.Endpoint)
		if err != nil {
			return nil, err
		}
		raw = dynamo.New(client, cfg.DynamoDB.Table)
		b.Tx = docstore.NoTx{}
	case config.StoreMemory:
		logger.Warn("using in-memory document store; data is lost on restart")
		raw = memory.New()
		b.Tx = docstore.NoTx{}
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	b.Store = docstore.NewRetrying(raw, docstore.RetryPolicy{
		MaxAttempts:     cfg.Retry.MaxAttempts,
		InitialInterval: cfg.Retry.InitialInterval,
		MaxInterval:     cfg.Retry.MaxInterval,
	}, logger, m)
	b.Checks["store"] = raw
	return b, nil
}

// OpenBackends opens every gateway the server needs.
func OpenBackends(ctx context.Context, cfg *config.Config, logger *slog.Logger, m *metrics.Metrics) (*Backends, error) {
	b, err := OpenStore(ctx, cfg, logger, m)
	if err != nil {
		return nil, err
	}

	if err := b.openBlobs(ctx, cfg); err != nil {
		b.Close()
		return nil, err
	}
	if err := b.OpenCache(ctx, cfg); err != nil {
		b.Close()
		return nil, err
	}
	return b, nil
}

func (b *Backends) openBlobs(ctx context.Context, cfg *config.Config) error {
	switch cfg.Blob.Backend {
	case config.BlobS3:
		client, err := s3blob.NewClient(ctx, cfg.Blob.Region, cfg.Blob.Endpoint)
		if err != nil {
			return err
		}
		blobs := s3blob.New(client, cfg.Blob.Bucket, cfg.Blob.Region, cfg.Blob.PublicBaseURL)
		b.Blobs = blobs
		b.Checks["blob"] = blobs
	case config.BlobFilesystem:
		base := cfg.Blob.PublicBaseURL
		if base == "" {
			base = MediaPath
		}
		fs, err := filestore.New(cfg.Blob.Dir, base)
		if err != nil {
			return err
		}
		b.Blobs = fs
		b.Media = http.FileServer(http.Dir(cfg.Blob.Dir))
	default:
		return fmt.Errorf("unknown blob backend %q", cfg.Blob.Backend)
	}
	return nil
}

// OpenCache connects the bazaar list cache.
func (b *Backends) OpenCache(ctx context.Context, cfg *config.Config) error {
	switch cfg.Cache.Backend {
	case config.CacheRedis:
		client, err := cache.NewRedisClient(ctx, cfg.Redis.URL, cfg.Redis.PoolSize, cfg.Redis.DialTimeout)
		if err != nil {
			return err
		}
		b.closers = append(b.closers, func() { _ = client.Close() })
		b.Cache = cache.NewRedis(client, cfg.Cache.BazaarTTL)
		b.Checks["cache"] = rest.PingFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
	case config.CacheMemory:
		b.Cache = cache.NewMemory(cfg.Cache.BazaarTTL)
	default:
		return fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
	return nil
}
