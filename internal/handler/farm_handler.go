package handler

import (
	"net/http"
	"strconv"

	"github.com/BekzhanK1/fms-server/internal/config"
	"github.com/BekzhanK1/fms-server/internal/domain/model"
	"github.com/BekzhanK1/fms-server/internal/middleware"
	"github.com/BekzhanK1/fms-server/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /farms のHTTP（ファーマーの自ファーム管理＋アドミンの認証承認）
type FarmHandler struct {
	uc *usecase.FarmUsecase
}

func NewFarmHandler(uc *usecase.FarmUsecase) *FarmHandler {
	return &FarmHandler{uc: uc}
}

type SaveFarmRequest struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	GeoLoc    string `json:"geo_loc"`
	Size      string `json:"size"`
	CropTypes string `json:"crop_types"`
}

type VerifyFarmRequest struct {
	Verified bool `json:"verified"`
}

func (h *FarmHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/farms")
	g.Use(middleware.AuthJWT(cfg))

	fg := g.Group("")
	fg.Use(middleware.RoleGuard(string(model.RoleFarmer)))
	fg.GET("", h.list)
	fg.POST("", h.create)
	fg.PUT("/:id", h.update)

	// 承認はアドミンのみ
	g.PATCH("/:id/verify", h.verify, middleware.RoleGuard(string(model.RoleAdmin)))
}

func (h *FarmHandler) list(c echo.Context) error {
	id, ok := getIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.ListMyFarms(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *FarmHandler) create(c echo.Context) error {
	id, ok := getIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req SaveFarmRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Create(c.Request().Context(), id, usecase.SaveFarmInput{
		Name:      req.Name,
		Address:   req.Address,
		GeoLoc:    req.GeoLoc,
		Size:      req.Size,
		CropTypes: req.CropTypes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (h *FarmHandler) update(c echo.Context) error {
	id, ok := getIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	farmID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req SaveFarmRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Update(c.Request().Context(), id, farmID, usecase.SaveFarmInput{
		Name:      req.Name,
		Address:   req.Address,
		GeoLoc:    req.GeoLoc,
		Size:      req.Size,
		CropTypes: req.CropTypes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *FarmHandler) verify(c echo.Context) error {
	id, ok := getIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	farmID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req VerifyFarmRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.Verify(c.Request().Context(), id, farmID, req.Verified); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
