package config

import (
	"net"
	"strconv"
	"time"
)

// Storage backends.
const (
	StorePostgres = "postgres"
	StoreDynamoDB = "dynamodb"
	StoreMemory   = "memory"

	BlobS3         = "s3"
	BlobFilesystem = "filesystem"

	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Config is the root application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Store     StoreConfig     `yaml:"store"`
	DynamoDB  DynamoDBConfig  `yaml:"dynamodb"`
	Blob      BlobConfig      `yaml:"blob"`
	Redis     RedisConfig     `yaml:"redis"`
	Cache     CacheConfig     `yaml:"cache"`
	Auth      AuthConfig      `yaml:"auth"`
	Donation  DonationConfig  `yaml:"donation"`
	Retry     RetryConfig     `yaml:"retry"`
	Log       LogConfig       `yaml:"log"`
	CORS      CORSConfig      `yaml:"cors"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,PUT,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Authorization,Content-Type,Accept-Language"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"true"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// Addr returns the listen address.
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// StoreConfig selects the document store backend.
type StoreConfig struct {
	Backend string `yaml:"backend" env:"STORE_BACKEND" env-default:"postgres"`
}

// DynamoDBConfig holds the DynamoDB document table settings.
type DynamoDBConfig struct {
	Region   string `yaml:"region"   env:"DYNAMODB_REGION"`
	Table    string `yaml:"table"    env:"DYNAMODB_TABLE"    env-default:"bazaar-documents"`
	Endpoint string `yaml:"endpoint" env:"DYNAMODB_ENDPOINT"`
}

// BlobConfig selects and configures photo storage.
type BlobConfig struct {
	Backend       string `yaml:"backend"         env:"BLOB_BACKEND"         env-default:"filesystem"`
	Bucket        string `yaml:"bucket"          env:"BLOB_BUCKET"`
	Region        string `yaml:"region"          env:"BLOB_REGION"`
	Endpoint      string `yaml:"endpoint"        env:"BLOB_ENDPOINT"`
	PublicBaseURL string `yaml:"public_base_url" env:"BLOB_PUBLIC_BASE_URL"`
	Dir           string `yaml:"dir"             env:"BLOB_DIR"             env-default:"./data/media"`
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	URL         string        `yaml:"url"          env:"REDIS_URL"`
	PoolSize    int           `yaml:"pool_size"    env:"REDIS_POOL_SIZE"    env-default:"10"`
	DialTimeout time.Duration `yaml:"dial_timeout" env:"REDIS_DIAL_TIMEOUT" env-default:"5s"`
}

// CacheConfig configures the bazaar list cache.
type CacheConfig struct {
	Backend   string        `yaml:"backend"    env:"CACHE_BACKEND"    env-default:"memory"`
	BazaarTTL time.Duration `yaml:"bazaar_ttl" env:"CACHE_BAZAAR_TTL" env-default:"5m"`
}

// AuthConfig holds bearer token settings.
type AuthConfig struct {
	JWTSecret      string        `yaml:"jwt_secret"       env:"AUTH_JWT_SECRET"       env-required:"true"`
	JWTIssuer      string        `yaml:"jwt_issuer"       env:"AUTH_JWT_ISSUER"       env-default:"bazaar"`
	AccessTokenTTL time.Duration `yaml:"access_token_ttl" env:"AUTH_ACCESS_TOKEN_TTL" env-default:"1h"`
	Leeway         time.Duration `yaml:"leeway"           env:"AUTH_LEEWAY"           env-default:"30s"`
}

// DonationConfig holds donation intake rules.
type DonationConfig struct {
	PageSize      int `yaml:"page_size"      env:"DONATION_PAGE_SIZE"      env-default:"20"`
	MinPhotos     int `yaml:"min_photos"     env:"DONATION_MIN_PHOTOS"     env-default:"2"`
	QRSize        int `yaml:"qr_size"        env:"DONATION_QR_SIZE"        env-default:"256"`
	UploadWorkers int `yaml:"upload_workers" env:"DONATION_UPLOAD_WORKERS" env-default:"4"`
}

// RetryConfig bounds retries of read-only store calls.
type RetryConfig struct {
	MaxAttempts     int           `yaml:"max_attempts"     env:"RETRY_MAX_ATTEMPTS"     env-default:"3"`
	InitialInterval time.Duration `yaml:"initial_interval" env:"RETRY_INITIAL_INTERVAL" env-default:"100ms"`
	MaxInterval     time.Duration `yaml:"max_interval"     env:"RETRY_MAX_INTERVAL"     env-default:"2s"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// RateLimitConfig limits upload and create requests per client IP.
type RateLimitConfig struct {
	WritesPerMinute int           `yaml:"writes_per_minute" env:"RATELIMIT_WRITES_PER_MINUTE" env-default:"30"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"  env:"RATELIMIT_CLEANUP_INTERVAL"  env-default:"5m"`
}
