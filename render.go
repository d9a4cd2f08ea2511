package siteforge

import (
	"context"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

// RenderToString renders a component to a string, for preview fallback
// pushes that ship server-rendered HTML over the wire.
func RenderToString(cmp templ.Component) (string, error) {
	var b strings.Builder
	if err := cmp.Render(context.Background(), &b); err != nil {
		return "", err
	}
	return b.String(), nil
}
