// Package dashboard serves a finished frequency snapshot over a small
// read-only JSON API.
package dashboard

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"tinydns-logstat/logging"
	"tinydns-logstat/stats"
)

// Config controls the dashboard app. Basic auth is enabled only when both
// User and Password are set.
type Config struct {
	User     string
	Password string
	Logger   *logging.Logger
}

// New builds the fiber app serving snap.
func New(snap stats.Snapshot, cfg Config) *fiber.App {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default().WithComponent("dashboard")
	}

	app := fiber.New(fiber.Config{
		AppName:               "tinydns-logstat",
		DisableStartupMessage: true,
	})

	app.Use(cors.New())
	if cfg.User != "" && cfg.Password != "" {
		app.Use(basicauth.New(basicauth.Config{
			Users: map[string]string{
				cfg.User: cfg.Password,
			},
			Realm: "tinydns-logstat",
		}))
	} else {
		logger.Warn("dashboard running without authentication")
	}

	h := &handlers{snap: snap}

	// Routes
	app.Get("/api/stats", h.ApiStats)
	app.Get("/api/query-types", h.ApiQueryTypes)
	app.Get("/api/response-codes", h.ApiResponseCodes)
	app.Get("/api/top-domains", h.ApiTopDomains)
	app.Get("/api/top-clients", h.ApiTopClients)
	app.Get("/api/timeline", h.ApiTimeline)

	return app
}

// Serve runs the app on addr until it fails or is shut down.
func Serve(app *fiber.App, addr string, logger *logging.Logger) error {
	logger.Info("dashboard listening", "addr", addr)
	return app.Listen(addr)
}
