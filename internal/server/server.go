package server

import (
	"errors"
	"time"

	"estoque/internal/handlers"
	"estoque/internal/middleware"
	"estoque/internal/services"
	"estoque/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Deps are the collaborators the HTTP app is built from.
type Deps struct {
	ProductService *services.ProductService
	Validator      *validation.Validator
	// DB is pinged by /health; nil reports the database as not configured.
	DB      *gorm.DB
	Metrics *middleware.Metrics
	// AccessLog enables Fiber's request logger.
	AccessLog bool
}

// New builds the Fiber app with middleware, product routes, /health and
// /metrics.
func New(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "estoque",
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	if deps.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		}))
	}
	if deps.Metrics != nil {
		app.Use(deps.Metrics.Handler())
		app.Get("/metrics", deps.Metrics.Endpoint())
	}

	app.Get("/health", healthHandler(deps.DB))

	api := app.Group("/api")
	handlers.NewProductHandler(deps.ProductService, deps.Validator).RegisterRoutes(api)

	return app
}

func healthHandler(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := "not configured"
		if db != nil {
			status = "up"
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.PingContext(c.UserContext())
			}
			if err != nil {
				log.Warn().Err(err).Msg("health check: database ping failed")
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"status":   "unhealthy",
					"time":     time.Now().Format(time.RFC3339),
					"database": "down",
				})
			}
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": status,
		})
	}
}

// errorHandler renders errors that escape handlers as JSON without leaking
// internal details.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Erro interno do servidor"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	} else {
		log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("unhandled error")
	}
	return c.Status(code).JSON(fiber.Map{"message": msg})
}
