package logger

// Config holds configuration for the logger.
type Config struct {
	// Level is the minimum level logged (debug, info, warn, error).
	Level string `mapstructure:"level" default:"info"`
	// Format is the output encoding (json, console).
	Format string `mapstructure:"format" default:"json"`
	// Dir is the root directory for per-client channel files.
	// Channel files are disabled when empty.
	Dir string `mapstructure:"dir" default:""`
}
