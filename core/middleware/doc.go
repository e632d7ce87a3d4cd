// Package middleware groups the HTTP middleware of the service.
//
//   - auth: API key check on the X-API-Key header.
//   - rayid: request id stored in the context and echoed in the X-Ray-ID
//     header. logger.WithRayID reads it.
package middleware
