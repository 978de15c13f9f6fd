package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mcpgate/mcpgate/internal/search"
)

// SearchWeb forwards a query to the upstream search API.
func (c *Controller) SearchWeb(ctx echo.Context) error {
	var req search.SearchRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}
	if req.Query == "" {
		return c.HandleError(ctx, nil, "Field 'query' is required", http.StatusBadRequest)
	}

	response, err := c.Search.Search(ctx.Request().Context(), req)
	if err != nil {
		return c.HandleError(ctx, err, "Search request failed", mapErrorStatus(err))
	}

	c.logger.Debug("search completed",
		"query", req.Query,
		"results", len(response.Results),
		"ip", ctx.RealIP(),
	)

	return ctx.JSON(http.StatusOK, response)
}
