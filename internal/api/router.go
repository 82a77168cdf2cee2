package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
	"github.com/safar/storefront-api/internal/config"
	"github.com/safar/storefront-api/internal/events"
	"github.com/safar/storefront-api/internal/metrics"
	"go.uber.org/zap"
)

const (
	serviceName = "storefront-api"
	apiVersion  = "1.0.0"
)

type Handler struct {
	db        *sqlx.DB
	publisher events.Publisher
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

func NewHandler(db *sqlx.DB, publisher events.Publisher, m *metrics.Metrics, logger *zap.Logger) *Handler {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Handler{
		db:        db,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}
}

func NewRouter(h *Handler, corsCfg config.CORSConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.logger))
	r.Use(h.metrics.Middleware)
	r.Use(recoverer(h.logger))

	// Set before Route so the /api subrouter inherits them.
	r.NotFound(notFound)
	r.MethodNotAllowed(methodNotAllowed)

	r.Get("/", h.index)
	r.Get("/health", h.health)
	r.Get("/db-check", h.dbCheck)
	r.Method(http.MethodGet, "/metrics", h.metrics.Handler())

	origins := corsCfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Content-Type", "Authorization"},
			MaxAge:         300,
		}))

		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.listUsers)
			r.Post("/", h.createUser)
			r.Get("/{id:[0-9]+}", h.getUser)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.listProducts)
			r.Post("/", h.createProduct)
			r.Get("/{id:[0-9]+}", h.getProduct)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", h.listOrders)
			r.Post("/", h.createOrder)
			r.Get("/{id:[0-9]+}", h.getOrder)
		})
	})

	return r
}
