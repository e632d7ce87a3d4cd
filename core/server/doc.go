// Package server holds the HTTP server configuration.
//
// The Config struct defines the HTTP port, the API key required by the sync
// routes and the time budget of one HTTP-triggered run. It is embedded by
// core/config and read by the start command.
package server
