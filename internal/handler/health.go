// Package handler contains the HTTP handlers: auth, train catalog,
// seat maps, holds and booking commits.
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health is the liveness endpoint used by load balancers.
func Health(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}
