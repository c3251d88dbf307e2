// Package httpapi exposes the attendance service as a JSON API over fiber.
package httpapi

import (
	"context"
	"log/slog"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"

	"github.com/example/rollcall/internal/ctxutil"
	"github.com/example/rollcall/internal/ports/primary"
)

// ActorHeader names the request header carrying the acting user's ID.
const ActorHeader = "X-Actor-ID"

// requestTimeout bounds every request, remote store calls included.
const requestTimeout = 10 * time.Second

// Server serves the attendance API. Each worker gets its own session so
// optimistic state is shared by every request for that worker.
type Server struct {
	sessions primary.SessionProvider
	logger   *slog.Logger
	validate *validator.Validate
}

// NewServer creates a Server over the given session provider.
func NewServer(sessions primary.SessionProvider, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		sessions: sessions,
		logger:   logger,
		validate: validator.New(),
	}
}

// App builds the fiber application with middleware and routes.
func (s *Server) App() *fiber.App {
	app := fiber.New(fiber.Config{
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	app.Use(s.requestContext)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	w := app.Group("/workers/:worker")
	w.Post("/refresh", s.refresh)
	w.Get("/cells/:day", s.getCell)
	w.Put("/marks", s.putMark)
	w.Delete("/marks", s.deleteMark)
	w.Get("/marks", s.listMarks)
	w.Post("/toggle", s.toggle)
	w.Get("/summary", s.summary)
	w.Get("/projects", s.projects)

	return app
}

// Listen serves on addr until ctx is cancelled.
func (s *Server) Listen(ctx context.Context, addr string) error {
	app := s.App()

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(addr)
	}()

	s.logger.Info("http server listening", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("http server shutting down")
		return app.ShutdownWithTimeout(5 * time.Second)
	}
}

// requestContext attaches a request ID, the actor and a timeout to the
// request's user context, and logs the request when it completes.
func (s *Server) requestContext(c *fiber.Ctx) error {
	id := c.Get(fiber.HeaderXRequestID)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(fiber.HeaderXRequestID, id)

	ctx := ctxutil.WithRequestID(ctxutil.WithActorID(c.UserContext(), c.Get(ActorHeader)), id)
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	c.SetUserContext(ctx)

	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	if err != nil {
		status = statusFor(err)
	}
	s.logger.InfoContext(ctx, "http request",
		"method", c.Method(),
		"path", c.OriginalURL(),
		"status", status,
		"duration", time.Since(start),
		"actor", c.Get(ActorHeader),
	)
	return err
}
