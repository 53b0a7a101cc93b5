package service_registry

import (
	http_middleware "github.com/benmeehan/gps-ingestor/internal/middlewares/http"
	"github.com/benmeehan/gps-ingestor/internal/utils"
)

// InitializeMiddlewares builds the HTTP middleware chain based on configuration.
// The first entry wraps all the others.
func (sr *ServiceRegistry) InitializeMiddlewares(config *utils.Config) []http_middleware.HTTPMiddleware {
	var middlewares []http_middleware.HTTPMiddleware

	// Ordered middleware definitions
	middlewaresInOrder := []struct {
		name        string
		enabled     bool
		constructor func() http_middleware.HTTPMiddleware
	}{
		{
			name:    "access_log",
			enabled: config.Server.AccessLog,
			constructor: func() http_middleware.HTTPMiddleware {
				return http_middleware.AccessLog(sr.Logger)
			},
		},
		{
			name:    "recoverer",
			enabled: true,
			constructor: func() http_middleware.HTTPMiddleware {
				return http_middleware.Recoverer(sr.Logger)
			},
		},
	}

	for _, mw := range middlewaresInOrder {
		if mw.enabled {
			middlewares = append(middlewares, mw.constructor())
			sr.Logger.Info().Str("middleware", mw.name).Msg("Middleware initialized")
		} else {
			sr.Logger.Debug().Str("middleware", mw.name).Msg("Middleware is disabled, skipping")
		}
	}

	return middlewares
}
