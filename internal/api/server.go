// Package api serves the JSON inference endpoint
package api

import (
	"errors"
	"net/http"

	"kickpredict/app"
	"kickpredict/domain/campaign"
	"kickpredict/domain/core"
	"kickpredict/internal"
	"kickpredict/ports"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
	Field string `json:"field,omitempty"`
}

// PredictHandler handles prediction requests
type PredictHandler struct {
	predictor ports.Predictor
	logger    *internal.Logger
}

// NewPredictHandler creates a new prediction handler
func NewPredictHandler(predictor ports.Predictor, logger *internal.Logger) *PredictHandler {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &PredictHandler{predictor: predictor, logger: logger}
}

// NewRouter builds the gin engine with all inference routes
func NewRouter(predictor ports.Predictor, logger *internal.Logger) *gin.Engine {
	h := NewPredictHandler(predictor, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(h.requestLogger())

	router.GET("/", h.Health)
	router.POST("/predict", h.Predict)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return router
}

// Health answers liveness probes
func (h *PredictHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Predict decodes a campaign and returns its verdict
func (h *PredictHandler) Predict(c *gin.Context) {
	var in campaign.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid JSON body: " + err.Error(), Kind: "bad_request"})
		return
	}

	v, err := h.predictor.Predict(c.Request.Context(), in)
	if err != nil {
		status, body := errorResponse(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("prediction failed: %v", err)
		}
		c.JSON(status, body)
		return
	}
	c.JSON(http.StatusOK, v)
}

// errorResponse maps domain errors to HTTP status codes
func errorResponse(err error) (int, ErrorResponse) {
	body := ErrorResponse{Error: err.Error(), Kind: app.ErrorKind(err)}

	var missing *core.MissingFieldError
	var invalid *core.InvalidFieldError
	var dateErr *core.DateParseError
	switch {
	case errors.As(err, &missing):
		body.Field = missing.Field
	case errors.As(err, &invalid):
		body.Field = invalid.Field
	case errors.As(err, &dateErr):
		body.Field = dateErr.Field
	}

	switch {
	case core.IsInputError(err):
		return http.StatusUnprocessableEntity, body
	case core.IsModelUnavailable(err):
		return http.StatusServiceUnavailable, body
	default:
		body.Error = "internal error"
		return http.StatusInternalServerError, body
	}
}

func (h *PredictHandler) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		h.logger.Debug("%s %s -> %d", c.Request.Method, c.Request.URL.Path, c.Writer.Status())
	}
}
