// Package server exposes the todo service over HTTP using fiber.
package server

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/rs/zerolog"
	todo "github.com/sicko7947/todo-go"
	"github.com/sicko7947/todo-go/service"
)

// Handler serves the todo routes
type Handler struct {
	svc         *service.Service
	logger      zerolog.Logger
	backend     todo.Backend
	corsOrigins []string
}

// Option configures the HTTP application
type Option func(*Handler)

// WithLogger sets the request logger
func WithLogger(logger zerolog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithBackend sets the backend name reported by the health endpoint
func WithBackend(backend todo.Backend) Option {
	return func(h *Handler) {
		h.backend = backend
	}
}

// WithCORSOrigins sets the origins allowed to call the API from a browser.
// An empty list disables the CORS middleware.
func WithCORSOrigins(origins []string) Option {
	return func(h *Handler) {
		h.corsOrigins = origins
	}
}

// NewApp builds the fiber application with middleware and routes registered
func NewApp(svc *service.Service, opts ...Option) *fiber.App {
	h := &Handler{
		svc:    svc,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}

	app := fiber.New(fiber.Config{
		AppName: "todo-go",
	})

	app.Use(requestLogger(h.logger))
	app.Use(recoverer.New())
	if len(h.corsOrigins) > 0 {
		app.Use(cors.New(cors.Config{
			AllowOrigins: h.corsOrigins,
			AllowMethods: []string{fiber.MethodGet, fiber.MethodPost, fiber.MethodPut, fiber.MethodDelete},
			AllowHeaders: []string{fiber.HeaderContentType},
		}))
	}

	h.registerRoutes(app)

	return app
}

// registerRoutes registers all HTTP routes
func (h *Handler) registerRoutes(app *fiber.App) {
	// Health check endpoint
	app.Get("/health", h.handleHealth)

	app.Get("/todo-items", h.handleListItems)
	app.Get("/item/:id", h.handleGetItem)
	app.Post("/add", h.handleAddItem)
	app.Put("/update/:id", h.handleUpdateItem)
	app.Delete("/delete/:id", h.handleDeleteItem)
}

// requestLogger logs every request once the rest of the chain has run
func requestLogger(logger zerolog.Logger) fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}

		todo.LogRequestCompleted(logger, c.Method(), c.Path(), status, time.Since(start))
		return err
	}
}
