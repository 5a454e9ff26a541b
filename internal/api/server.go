package api

import (
	"net/http"
	"time"

	"github.com/futig/bms-rag/internal/api/docs"
	"github.com/futig/bms-rag/internal/api/middleware"
	queryapi "github.com/futig/bms-rag/internal/api/query"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// RouterConfig collects what the HTTP surface is built from
type RouterConfig struct {
	Query *queryapi.Handler
	// RequestTimeout bounds a whole request; Ask embeds, retrieves and generates inside it
	RequestTimeout time.Duration
	Logger         *zap.Logger
}

// SetupRouter mounts the query API and Swagger UI behind the shared middleware stack
func SetupRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(
		chimiddleware.Recoverer,
		chimiddleware.RequestID,
		middleware.Logger(cfg.Logger),
	)

	docs.RegisterRoutes(r)

	r.Group(func(r chi.Router) {
		if cfg.RequestTimeout > 0 {
			r.Use(chimiddleware.Timeout(cfg.RequestTimeout))
		}
		queryapi.RegisterRoutes(r, cfg.Query)
	})

	return r
}
