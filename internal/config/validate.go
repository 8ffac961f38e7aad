package config

import (
	"fmt"
	"slices"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}
	if c.Auth.Leeway < 0 || c.Auth.Leeway >= c.Auth.AccessTokenTTL {
		return fmt.Errorf("auth.leeway must be non-negative and shorter than auth.access_token_ttl")
	}

	if err := c.validateStore(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if err := c.validateBlob(); err != nil {
		return fmt.Errorf("blob: %w", err)
	}
	if err := c.validateCache(); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	if err := c.Donation.validate(); err != nil {
		return fmt.Errorf("donation: %w", err)
	}

	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be >= 1 (got %d)", c.Retry.MaxAttempts)
	}
	if c.RateLimit.WritesPerMinute < 1 {
		return fmt.Errorf("ratelimit.writes_per_minute must be >= 1 (got %d)", c.RateLimit.WritesPerMinute)
	}

	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Backend {
	case StorePostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for the postgres backend")
		}
	case StoreDynamoDB:
		if c.DynamoDB.Region == "" || c.DynamoDB.Table == "" {
			return fmt.Errorf("dynamodb.region and dynamodb.table are required for the dynamodb backend")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("backend must be one of %v (got %q)",
			[]string{StorePostgres, StoreDynamoDB, StoreMemory}, c.Store.Backend)
	}
	return nil
}

func (c *Config) validateBlob() error {
	switch c.Blob.Backend {
	case BlobS3:
		if c.Blob.Bucket == "" {
			return fmt.Errorf("blob.bucket is required for the s3 backend")
		}
	case BlobFilesystem:
		if c.Blob.Dir == "" {
			return fmt.Errorf("blob.dir is required for the filesystem backend")
		}
	default:
		return fmt.Errorf("backend must be one of %v (got %q)",
			[]string{BlobS3, BlobFilesystem}, c.Blob.Backend)
	}
	return nil
}

func (c *Config) validateCache() error {
	if !slices.Contains([]string{CacheMemory, CacheRedis}, c.Cache.Backend) {
		return fmt.Errorf("backend must be one of %v (got %q)",
			[]string{CacheMemory, CacheRedis}, c.Cache.Backend)
	}
	if c.Cache.Backend == CacheRedis && c.Redis.URL == "" {
		return fmt.Errorf("redis.url is required for the redis backend")
	}
	if c.Cache.BazaarTTL <= 0 {
		return fmt.Errorf("bazaar_ttl must be > 0 (got %v)", c.Cache.BazaarTTL)
	}
	return nil
}

func (d DonationConfig) validate() error {
	if d.PageSize < 1 || d.PageSize > 200 {
		return fmt.Errorf("page_size must be between 1 and 200 (got %d)", d.PageSize)
	}
	if d.MinPhotos < 1 {
		return fmt.Errorf("min_photos must be >= 1 (got %d)", d.MinPhotos)
	}
	if d.QRSize < 64 {
		return fmt.Errorf("qr_size must be >= 64 (got %d)", d.QRSize)
	}
	if d.UploadWorkers < 1 {
		return fmt.Errorf("upload_workers must be >= 1 (got %d)", d.UploadWorkers)
	}
	return nil
}
