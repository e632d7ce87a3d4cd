package config

import "time"

// PagedAPI configures the REST source paginated with a page counter.
type PagedAPI struct {
	Enabled bool `mapstructure:"enabled" default:"false"`
	// Client names the integration in routes, reports and log directories.
	Client   string        `mapstructure:"client" default:"paged"`
	BaseURL  string        `mapstructure:"base_url" default:""`
	Company  string        `mapstructure:"company" default:"1"`
	Username string        `mapstructure:"username" default:""`
	Password string        `mapstructure:"password" default:""`
	Timeout  time.Duration `mapstructure:"timeout" default:"30s"`
}

// KeysetAPI configures the REST source paginated with a last-seen key.
type KeysetAPI struct {
	Enabled bool   `mapstructure:"enabled" default:"false"`
	Client  string `mapstructure:"client" default:"keyset"`
	BaseURL string `mapstructure:"base_url" default:""`
	// Token skips the login call when set.
	Token    string        `mapstructure:"token" default:""`
	Username string        `mapstructure:"username" default:""`
	Password string        `mapstructure:"password" default:""`
	Timeout  time.Duration `mapstructure:"timeout" default:"30s"`
	// Branches lists the branch ids read as separate partitions. When empty
	// the branches are listed upstream.
	Branches []int `mapstructure:"branches" default:""`
	// ChangedOnly reads only the products maintained since midnight.
	ChangedOnly bool `mapstructure:"changed_only" default:"false"`
}

// SQLExtract configures the source reading an upstream database directly.
type SQLExtract struct {
	Enabled bool   `mapstructure:"enabled" default:"false"`
	Client  string `mapstructure:"client" default:"extract"`
	// Driver is postgres, mysql or sqlserver.
	Driver string `mapstructure:"driver" default:"postgres"`
	DSN    string `mapstructure:"dsn" default:""`
	// Query takes the page size and the row offset as its two parameters.
	Query string `mapstructure:"query" default:""`
	// Branch is stamped on every price read.
	Branch int `mapstructure:"branch" default:"1"`
}
