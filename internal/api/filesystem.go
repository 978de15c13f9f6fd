package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mcpgate/mcpgate/internal/fileops"
)

// ListRequest is the body of POST /list.
type ListRequest struct {
	Path      string `json:"path"`
	Recursive bool   `json:"recursive"` // default false: direct children only
}

// ListResponse is the body of a successful POST /list.
type ListResponse struct {
	Files []fileops.FileEntry `json:"files"`
}

// ReadRequest is the body of POST /read.
type ReadRequest struct {
	Path     string `json:"path"`
	Encoding string `json:"encoding"` // default utf-8
}

// ListFiles enumerates a directory inside the sandbox.
func (c *Controller) ListFiles(ctx echo.Context) error {
	var req ListRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}
	if req.Path == "" {
		return c.HandleError(ctx, nil, "Field 'path' is required", http.StatusBadRequest)
	}

	files, err := c.Lister.List(ctx.Request().Context(), req.Path, req.Recursive)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to list path", mapErrorStatus(err))
	}

	c.logger.Debug("listed path",
		"path", req.Path,
		"recursive", req.Recursive,
		"entries", len(files),
		"ip", ctx.RealIP(),
	)

	return ctx.JSON(http.StatusOK, ListResponse{Files: files})
}

// ReadFile returns file content, decoded as text when possible and base64
// otherwise.
func (c *Controller) ReadFile(ctx echo.Context) error {
	var req ReadRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}
	if req.Path == "" {
		return c.HandleError(ctx, nil, "Field 'path' is required", http.StatusBadRequest)
	}

	result, err := c.Reader.Read(ctx.Request().Context(), req.Path, req.Encoding)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to read file", mapErrorStatus(err))
	}

	c.logger.Debug("read file",
		"path", req.Path,
		"encoding", result.Encoding,
		"ip", ctx.RealIP(),
	)

	return ctx.JSON(http.StatusOK, result)
}
