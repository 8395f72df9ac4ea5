package api

import (
	"context"
	"net/http"

	"github.com/okian/neodb/pkg/logger"
	"github.com/rs/cors"
)

// CORSMiddleware allows read-only cross-origin access to the API.
type CORSMiddleware struct {
	*cors.Cors
}

// NewCORS creates CORS middleware for origins; "*" allows any origin.
func NewCORS(origins []string, l logger.Logger) *CORSMiddleware {
	methods := []string{http.MethodGet, http.MethodHead, http.MethodOptions}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: methods,
		AllowedHeaders: []string{"Content-Type", HeaderRequestID},
		ExposedHeaders: []string{HeaderRequestID},
	})
	if l != nil {
		l.Info(context.Background(), "cors configured",
			logger.Any("allowedOrigins", origins),
			logger.Any("allowedMethods", methods),
		)
	}
	return &CORSMiddleware{c}
}

// Middleware wraps h with the CORS handler.
func (c *CORSMiddleware) Middleware(h http.Handler) http.Handler {
	return c.Cors.Handler(h)
}
