package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v5"
)

// ClassifyRequest is the body of POST /v1/classify.
type ClassifyRequest struct {
	Documents []string `json:"documents"`
}

// ClassifyResponse lists one prediction per input document, in order.
type ClassifyResponse struct {
	Results []Prediction `json:"results"`
}

// EncodeRequest is the body of POST /v1/encode.
type EncodeRequest struct {
	Text string `json:"text"`
}

// EncodeResponse carries the token ids for the request text.
type EncodeResponse struct {
	Tokens []int32 `json:"tokens"`
}

// PerplexityRequest is the body of POST /v1/perplexity.
type PerplexityRequest struct {
	Text string `json:"text"`
}

// PerplexityResponse reports the language-model perplexity of the request
// text and the number of scored positions.
type PerplexityResponse struct {
	Perplexity float64 `json:"perplexity"`
	Tokens     int     `json:"tokens"`
}

func (s *Server) handleClassify(c *echo.Context) error {
	var req ClassifyRequest
	if err := c.Bind(&req); err != nil {
		return writeBadRequest(c, "malformed JSON body")
	}
	if len(req.Documents) == 0 {
		return writeBadRequest(c, "documents must not be empty")
	}

	preds, err := s.service.Classify(req.Documents)
	if err != nil {
		s.log.Warn("classification failed", "error", err)
		return writeBadRequest(c, err.Error())
	}
	return c.JSON(http.StatusOK, ClassifyResponse{Results: preds})
}

func (s *Server) handleEncode(c *echo.Context) error {
	var req EncodeRequest
	if err := c.Bind(&req); err != nil {
		return writeBadRequest(c, "malformed JSON body")
	}
	if req.Text == "" {
		return writeBadRequest(c, "text must not be empty")
	}

	tokens, err := s.service.Encode(req.Text)
	if err != nil {
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error())
	}
	return c.JSON(http.StatusOK, EncodeResponse{Tokens: tokens})
}

func (s *Server) handlePerplexity(c *echo.Context) error {
	var req PerplexityRequest
	if err := c.Bind(&req); err != nil {
		return writeBadRequest(c, "malformed JSON body")
	}
	if req.Text == "" {
		return writeBadRequest(c, "text must not be empty")
	}

	ppl, n, err := s.service.Perplexity(req.Text)
	if err != nil {
		if errors.Is(err, ErrNoLanguageModel) {
			return writeError(c, http.StatusServiceUnavailable, "server_error", err.Error())
		}
		return writeBadRequest(c, err.Error())
	}
	return c.JSON(http.StatusOK, PerplexityResponse{Perplexity: ppl, Tokens: n})
}
