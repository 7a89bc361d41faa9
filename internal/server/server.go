package server

import (
	"net/http"

	"github.com/BekzhanK1/fms-server/internal/config"
	appmw "github.com/BekzhanK1/fms-server/internal/middleware"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// ルートを登録できるhandler
type RouteRegistrar interface {
	RegisterRoutes(e *echo.Echo, cfg config.Config)
}

func Start(cfg config.Config, registrars ...RouteRegistrar) error {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Recover())
	e.Use(appmw.RequestLogger())
	e.Use(appmw.RateLimit(false))

	if cfg.FEURL != "" {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins: []string{cfg.FEURL},
			AllowMethods: []string{
				http.MethodGet, http.MethodPost, http.MethodPut,
				http.MethodPatch, http.MethodDelete, http.MethodOptions,
			},
			AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
			AllowCredentials: true,
		}))
	}

	RegisterRoutes(e, cfg, registrars...)

	return e.Start(":" + cfg.Port)
}
