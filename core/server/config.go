package server

import "time"

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"8080"`
	// ApiKey is the secret key required to access the API.
	ApiKey string `mapstructure:"api_key" default:""`
	// RunTimeout bounds one HTTP-triggered run.
	RunTimeout time.Duration `mapstructure:"run_timeout" default:"30m"`
}

// Timeout returns RunTimeout, or one hour when unset.
func (c Config) Timeout() time.Duration {
	if c.RunTimeout <= 0 {
		return time.Hour
	}
	return c.RunTimeout
}
