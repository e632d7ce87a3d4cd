// Package config provides configuration management for the price sync service.
//
// It utilizes Viper for loading configuration from environment variables and
// an optional .env file. Defaults come from the `default` struct tags.
//
// # Configuration Structure
//
// The Config struct is the central repository for all application settings, divided into subsections:
//   - Server: HTTP server settings (port, API key)
//   - Database: downstream catalog connection
//   - Storage: archive bucket credentials
//   - Log: logging level, format and per-client log directory
//   - Sync: page size, retry budget, pool sizes and stamped defaults
//   - Metrics, Events: observers
//   - PagedAPI, KeysetAPI, SQLExtract: upstream sources
//
// # Usage
//
//	cfg, err := config.LoadConfig(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Sync.PageSize)
package config
