// Package api wires the gateway's HTTP surface: the status, list, read and
// search endpoints, the access gate, and the error-to-status mapping.
package api

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/mcpgate/mcpgate/internal/conf"
	"github.com/mcpgate/mcpgate/internal/errors"
	"github.com/mcpgate/mcpgate/internal/fileops"
	"github.com/mcpgate/mcpgate/internal/observability"
	"github.com/mcpgate/mcpgate/internal/search"
	"github.com/mcpgate/mcpgate/internal/securefs"
)

// APIKeyHeader carries the shared secret checked by the access gate.
const APIKeyHeader = "X-MCP-API-Key"

// Controller manages the API routes and handlers
type Controller struct {
	Echo     *echo.Echo
	Settings *conf.Settings
	SFS      *securefs.SecureFS
	Lister   *fileops.Lister
	Reader   *fileops.Reader
	Search   *search.Client

	logger  *slog.Logger
	metrics *observability.Metrics
}

// New creates a Controller over the given components and registers all
// routes. The settings struct is treated as immutable.
func New(settings *conf.Settings, sfs *securefs.SecureFS, searchClient *search.Client,
	metrics *observability.Metrics, logger *slog.Logger) *Controller {

	if logger == nil {
		logger = slog.Default()
	}

	c := &Controller{
		Echo:     echo.New(),
		Settings: settings,
		SFS:      sfs,
		Lister:   fileops.NewLister(sfs, logger),
		Reader:   fileops.NewReader(sfs, logger),
		Search:   searchClient,
		logger:   logger.With("service", "api"),
		metrics:  metrics,
	}

	c.Echo.HideBanner = true
	c.Echo.HidePort = true

	c.Echo.Use(middleware.Recover())
	if metrics != nil {
		c.Echo.Use(c.metricsMiddleware)
	}
	// The access gate runs before every handler; its failure short-circuits
	// all downstream work.
	c.Echo.Use(c.AccessGateMiddleware)

	c.initRoutes()
	return c
}

// initRoutes registers all API endpoints
func (c *Controller) initRoutes() {
	c.Echo.GET("/", c.Status)
	c.Echo.POST("/list", c.ListFiles)
	c.Echo.POST("/read", c.ReadFile)
	c.Echo.POST("/search", c.SearchWeb)
	if c.metrics != nil {
		c.Echo.GET("/metrics", echo.WrapHandler(c.metrics.Handler()))
	}
}

// Start begins listening and serving HTTP requests in a background
// goroutine. Fatal listen errors are reported on the returned channel.
func (c *Controller) Start() <-chan error {
	errChan := make(chan error, 1)

	go func() {
		addr := fmt.Sprintf("%s:%d", c.Settings.Server.Host, c.Settings.Server.Port)
		c.logger.Info("starting HTTP server", "addr", addr,
			"sandboxed", c.SFS.Sandboxed(), "base_path", c.SFS.BaseDir())
		if err := c.Echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	return errChan
}

// Shutdown gracefully stops the server.
func (c *Controller) Shutdown(ctx context.Context) error {
	c.logger.Info("shutting down HTTP server")
	return c.Echo.Shutdown(ctx)
}

// StatusResponse is the body of GET /.
type StatusResponse struct {
	Status string `json:"status"`
}

// Status reports that the gateway is up.
func (c *Controller) Status(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, StatusResponse{Status: "running"})
}

// ErrorResponse represents the JSON structure for API error responses
type ErrorResponse struct {
	Error         string `json:"error"`          // Error message or type
	Message       string `json:"message"`        // User-friendly error message
	Code          int    `json:"code"`           // HTTP status code
	CorrelationID string `json:"correlation_id"` // Unique identifier for tracking this error
}

// NewErrorResponse creates a new API error response
func NewErrorResponse(err error, message string, code int) *ErrorResponse {
	var errorStr string
	if err != nil {
		errorStr = err.Error()
	} else {
		errorStr = message
	}

	return &ErrorResponse{
		Error:         errorStr,
		Message:       message,
		Code:          code,
		CorrelationID: generateCorrelationID(),
	}
}

// generateCorrelationID creates a unique identifier for error tracking using
// cryptographic randomness
func generateCorrelationID() string {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const length = 8

	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		// Fall back to a default ID if crypto/rand fails
		return "ERR-RAND"
	}
	for i := range b {
		b[i] = charset[int(b[i])%len(charset)]
	}
	return string(b)
}

// mapErrorStatus translates component error categories to HTTP status codes.
// This is the only place where that mapping happens.
func mapErrorStatus(err error) int {
	var upstream *search.UpstreamError
	if errors.As(err, &upstream) {
		return upstream.StatusCode
	}

	switch errors.CategoryOf(err) {
	case errors.CategoryForbidden:
		return http.StatusForbidden
	case errors.CategoryNotFound:
		return http.StatusNotFound
	case errors.CategoryValidation, errors.CategoryLimit:
		return http.StatusBadRequest
	default:
		// Configuration, file-io, network and unexpected failures
		return http.StatusInternalServerError
	}
}

// HandleError constructs and returns an appropriate error response
func (c *Controller) HandleError(ctx echo.Context, err error, message string, code int) error {
	errorResp := NewErrorResponse(err, message, code)

	attrs := []any{
		"correlation_id", errorResp.CorrelationID,
		"message", message,
		"error", errorResp.Error,
		"code", code,
		"path", ctx.Request().URL.Path,
		"method", ctx.Request().Method,
		"ip", ctx.RealIP(),
	}
	var enhanced *errors.EnhancedError
	if errors.As(err, &enhanced) {
		attrs = append(attrs,
			"component", enhanced.GetComponent(),
			"category", enhanced.GetCategory(),
		)
	}

	c.logger.Error("API error", attrs...)

	return ctx.JSON(code, errorResp)
}

// metricsMiddleware records request counts and durations.
func (c *Controller) metricsMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		start := time.Now()
		err := next(ctx)

		status := ctx.Response().Status
		if err != nil {
			if httpErr, ok := err.(*echo.HTTPError); ok {
				status = httpErr.Code
			}
		}

		c.metrics.ObserveRequest(ctx.Request().Method, ctx.Path(), status, time.Since(start))
		return err
	}
}
