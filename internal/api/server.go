package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"homefind/messaging-service/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

// Server exposes the conversation service over HTTP.
type Server struct {
	echo            *echo.Echo
	service         service.ConversationService
	logger          *logrus.Logger
	address         string
	shutdownTimeout time.Duration
}

func NewServer(svc service.ConversationService, logger *logrus.Logger, address string, shutdownTimeout time.Duration) *Server {
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	server := &Server{
		echo:            e,
		service:         svc,
		logger:          logger,
		address:         address,
		shutdownTimeout: shutdownTimeout,
	}

	server.setupRoutes()

	return server
}

func (s *Server) setupRoutes() {
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status": "healthy",
		})
	})

	v1 := s.echo.Group("/api/v1")

	v1.POST("/conversations", s.startConversation)
	v1.GET("/conversations/:id", s.getConversation)
	v1.POST("/conversations/:id/messages", s.sendMessage)
	v1.GET("/conversations/:id/messages", s.listMessages)
	v1.POST("/conversations/:id/read", s.markConversationRead)
	v1.GET("/users/:userId/conversations", s.listInbox)
}

// Start runs the server and blocks until SIGINT/SIGTERM, then shuts down
// gracefully.
func (s *Server) Start() error {
	go func() {
		if err := s.echo.Start(s.address); err != nil && err != http.ErrServerClosed {
			s.logger.WithError(err).Fatal("HTTP server stopped")
		}
	}()

	s.logger.Infof("Listening on %s", s.address)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	s.logger.Info("Shutting down HTTP server...")

	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	s.logger.Info("Server exited")
	return nil
}
