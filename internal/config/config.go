package config

import "time"

// Config is the root application configuration.
type Config struct {
	Collector CollectorConfig `yaml:"collector"`
	Export    ExportConfig    `yaml:"export"`
	Log       LogConfig       `yaml:"log"`
	Database  DatabaseConfig  `yaml:"database"`
	Storage   StorageConfig   `yaml:"storage"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

// CollectorConfig controls the directory walk.
type CollectorConfig struct {
	BaseDir         string `yaml:"base_dir"          env:"COLLECTOR_BASE_DIR"          env-default:"data/test"`
	ValidateImages  bool   `yaml:"validate_images"   env:"COLLECTOR_VALIDATE_IMAGES"   env-default:"true"`
	ExistsCacheSize int    `yaml:"exists_cache_size" env:"COLLECTOR_EXISTS_CACHE_SIZE" env-default:"4096"`
}

// ExportConfig controls the JSON artifact.
type ExportConfig struct {
	OutputPath   string `yaml:"output_path"   env:"EXPORT_OUTPUT_PATH"`
	RelativeRoot string `yaml:"relative_root" env:"EXPORT_RELATIVE_ROOT"`
	PreviewCount int    `yaml:"preview_count" env:"EXPORT_PREVIEW_COUNT" env-default:"5"`
	ObjectPrefix string `yaml:"object_prefix" env:"EXPORT_OBJECT_PREFIX" env-default:"captionmap"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

// DatabaseConfig holds PostgreSQL connection settings. An empty DSN disables
// run persistence.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"4"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"0"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	InsertChunkSize int           `yaml:"insert_chunk_size"  env:"DATABASE_INSERT_CHUNK_SIZE"  env-default:"500"`
}

// Enabled reports whether a database is configured.
func (c DatabaseConfig) Enabled() bool {
	return c.DSN != ""
}

// StorageConfig holds S3-compatible object storage settings. An empty
// endpoint disables artifact upload.
type StorageConfig struct {
	Endpoint  string `yaml:"endpoint"   env:"STORAGE_ENDPOINT"`
	AccessKey string `yaml:"access_key" env:"STORAGE_ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"STORAGE_SECRET_KEY"`
	Bucket    string `yaml:"bucket"     env:"STORAGE_BUCKET"     env-default:"captionmap"`
	Region    string `yaml:"region"     env:"STORAGE_REGION"`
	UseSSL    bool   `yaml:"use_ssl"    env:"STORAGE_USE_SSL"    env-default:"true"`
}

// Enabled reports whether object storage is configured.
func (c StorageConfig) Enabled() bool {
	return c.Endpoint != ""
}

// MetricsConfig holds the Prometheus textfile location. Empty disables it.
type MetricsConfig struct {
	TextfilePath string `yaml:"textfile_path" env:"METRICS_TEXTFILE_PATH"`
}
