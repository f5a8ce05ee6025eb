package api

import (
	"fmt"
	"net"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/rs/zerolog"

	"github.com/vibecheck-lab/vibecheck/internal/database"
	"github.com/vibecheck-lab/vibecheck/internal/services"
)

type APIServer struct {
	app         *fiber.App
	db          *database.Database
	scanService services.ScanService
	log         zerolog.Logger
	port        int
}

func NewAPIServer(db *database.Database, scanService services.ScanService, log zerolog.Logger) *APIServer {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	// Add middleware
	app.Use(cors.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))

	server := &APIServer{
		app:         app,
		db:          db,
		scanService: scanService,
		log:         log,
	}
	server.setupRoutes()
	return server
}

func (s *APIServer) setupRoutes() {
	// Scan routes
	s.app.Post("/api/scan", s.handleScan)
	s.app.Get("/api/scan-stream", s.handleScanStream)

	// History routes
	s.app.Get("/api/history", s.handleHistory)
	s.app.Get("/api/history/:address", s.handleTokenHistory)
	s.app.Get("/api/total-scans", s.handleTotalScans)

	// Health check
	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})
}

// Start starts the server on the given port, or on a random available
// port when port is 0.
func (s *APIServer) Start(port int) (int, error) {
	if port == 0 {
		listener, err := net.Listen("tcp", ":0")
		if err != nil {
			return 0, fmt.Errorf("failed to find available port: %w", err)
		}
		port = listener.Addr().(*net.TCPAddr).Port
		listener.Close()
	}
	s.port = port

	go func() {
		if err := s.app.Listen(fmt.Sprintf(":%d", port)); err != nil {
			s.log.Error().Err(err).Msg("API server stopped")
		}
	}()

	return port, nil
}

func (s *APIServer) Shutdown() error {
	return s.app.Shutdown()
}

func (s *APIServer) GetPort() int {
	return s.port
}
