package server

import (
	"log/slog"

	"rag/app/api"

	"github.com/gofiber/fiber/v2"
)

var config = fiber.Config{
	ErrorHandler: api.ErrorHandler,
}

type Server struct {
	listenAddr string
	logger     *slog.Logger
	askHandler *api.AskHandler
}

func NewServer(addr string, askHandler *api.AskHandler) *Server {
	return &Server{
		listenAddr: addr,
		logger:     slog.Default(),
		askHandler: askHandler,
	}
}

func (s *Server) Stop() {
	s.logger.Info("server stopped")
}

func (s *Server) Run() {
	var (
		app          = fiber.New(config)
		checkHandler = api.NewCheckHandler()
		check        = app.Group("/check")
		apiv1        = app.Group("/api/v1")
	)

	check.Get("/healthy", checkHandler.HandleHealthy)
	apiv1.Post("/ask", s.askHandler.HandleAsk)
	apiv1.Post("/upload", s.askHandler.HandleUpload)

	if err := app.Listen(s.listenAddr); err != nil {
		s.logger.Error("error to start server", "error", err.Error())
	}
}
