// Package httputil holds small helpers shared by the echo handlers.
package httputil

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// ParseID reads a positive integer path parameter. Anything else is a 400.
func ParseID(c echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}
