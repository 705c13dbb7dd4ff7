// Package api exposes the text models over HTTP: document in, class scores
// out, a language-model perplexity endpoint, and a tokenization endpoint for
// debugging vocabularies.
package api

import (
	"net/http"

	"github.com/labstack/echo/v5"

	"github.com/strand-ml/strand/internal/logger"
)

// Server registers the strand HTTP handlers on an echo instance.
type Server struct {
	service *Service
	log     logger.Logger
}

// NewServer creates a server around the given inference service.
func NewServer(service *Service, log logger.Logger) *Server {
	return &Server{service: service, log: log}
}

// Register mounts all routes.
func (s *Server) Register(e *echo.Echo) {
	e.GET("/healthz", s.handleHealth)
	e.POST("/v1/classify", s.handleClassify)
	e.POST("/v1/encode", s.handleEncode)
	e.POST("/v1/perplexity", s.handlePerplexity)
}

func (s *Server) handleHealth(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func writeError(c *echo.Context, status int, errType, msg string) error {
	return c.JSON(status, map[string]any{
		"error": map[string]string{
			"type":    errType,
			"message": msg,
		},
	})
}

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg)
}
