// Package httpclient provides the JSON REST client used by the API sources.
package httpclient
