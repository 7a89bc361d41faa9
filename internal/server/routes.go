package server

import (
	"net/http"

	"github.com/BekzhanK1/fms-server/internal/config"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, cfg config.Config, registrars ...RouteRegistrar) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	for _, r := range registrars {
		r.RegisterRoutes(e, cfg)
	}
}
