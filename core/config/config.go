package config

import (
	"reflect"
	"strings"
	"time"
	_ "time/tzdata" // timezone resolution must not depend on the host

	"price-sync/core/database"
	"price-sync/core/events"
	"price-sync/core/logger"
	"price-sync/core/metrics"
	"price-sync/core/server"
	"price-sync/core/storage"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// It is divided into partial configurations for better modularity.
type Config struct {
	// Server holds configuration for the HTTP server.
	Server server.Config `mapstructure:"server"`
	// Storage holds configuration for the archive bucket (S3, Minio).
	Storage storage.Config `mapstructure:"storage"`
	// Log holds configuration for the logger.
	Log logger.Config `mapstructure:"log"`
	// Database holds configuration for the downstream catalog database.
	Database database.Config `mapstructure:"database"`
	// Sync holds the engine tuning and the stamped defaults.
	Sync Sync `mapstructure:"sync"`
	// Metrics holds configuration for the prometheus registry.
	Metrics metrics.Config `mapstructure:"metrics"`
	// Events holds configuration for the kafka publisher.
	Events events.Config `mapstructure:"events"`
	// PagedAPI configures the page-counter REST source.
	PagedAPI PagedAPI `mapstructure:"paged_api"`
	// KeysetAPI configures the watermark REST source.
	KeysetAPI KeysetAPI `mapstructure:"keyset_api"`
	// SQLExtract configures the relational extract source.
	SQLExtract SQLExtract `mapstructure:"sql_extract"`
}

// Sync holds the settings shared by every run.
type Sync struct {
	PageSize             int           `mapstructure:"page_size" default:"500"`
	MaxAttempts          int           `mapstructure:"max_attempts" default:"3"`
	RetryBackoff         time.Duration `mapstructure:"retry_backoff" default:"1s"`
	EnrichConcurrency    int           `mapstructure:"enrich_concurrency" default:"16"`
	PartitionConcurrency int           `mapstructure:"partition_concurrency" default:"4"`
	WriteChunkSize       int           `mapstructure:"write_chunk_size" default:"500"`
	// UpdateProducts rewrites descriptive columns of existing products.
	UpdateProducts bool `mapstructure:"update_products" default:"true"`
	// Timezone is used for validity dates and time-of-day stamps.
	Timezone        string `mapstructure:"timezone" default:"America/Sao_Paulo"`
	CompanyID       int    `mapstructure:"company_id" default:"1"`
	EstablishmentID int    `mapstructure:"establishment_id" default:"1"`
	UserID          int    `mapstructure:"user_id" default:"1"`
}

// Location resolves Timezone, falling back to UTC when it is unknown.
func (s Sync) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LoadConfig loads configuration from environment variables and .env file.
func LoadConfig(path string) (*Config, error) {
	envPath := path + "/.env"
	if path == "." {
		envPath = ".env"
	}

	// Ignore error if file doesn't exist (e.g. production)
	_ = godotenv.Overload(envPath)

	v := viper.New()

	// Recursively parse struct tags to set default values
	bindValues(v, Config{}, "")

	// Map environment variables to nested keys (e.g. SYNC_PAGE_SIZE -> sync.page_size)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// bindValues uses reflection to iterate over the struct and set default values in Viper
// based on the 'default' and 'mapstructure' tags.
func bindValues(v *viper.Viper, iface any, prefix string) {
	t := reflect.TypeOf(iface)

	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag == "" {
			continue
		}

		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		if field.Type.Kind() == reflect.Struct {
			bindValues(v, reflect.New(field.Type).Elem().Interface(), key)
			continue
		}

		// Always set default (even if empty) to register the key for AutomaticEnv
		v.SetDefault(key, field.Tag.Get("default"))
	}
}
