package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/BekzhanK1/fms-server/internal/config"
	"github.com/BekzhanK1/fms-server/internal/domain/model"
	"github.com/BekzhanK1/fms-server/internal/middleware"
	"github.com/BekzhanK1/fms-server/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /farmer/orders のHTTP（ファーマー側：受注一覧とステータス更新）
type FarmerOrderHandler struct {
	uc *usecase.FarmerOrderUsecase
}

func NewFarmerOrderHandler(uc *usecase.FarmerOrderUsecase) *FarmerOrderHandler {
	return &FarmerOrderHandler{uc: uc}
}

func (h *FarmerOrderHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/farmer/orders")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.RoleGuard(string(model.RoleFarmer)))

	g.GET("", h.list)
	g.PATCH("/:id", h.updateStatus)
}

func (h *FarmerOrderHandler) list(c echo.Context) error {
	id, ok := getIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	out, err := h.uc.List(c.Request().Context(), id, page, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *FarmerOrderHandler) updateStatus(c echo.Context) error {
	id, ok := getIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	// ボディは {"status": "..."} のみ受け付ける。余計なキーは拒否。
	var body map[string]json.RawMessage
	if err := json.NewDecoder(c.Request().Body).Decode(&body); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	raw, found := body["status"]
	if !found || len(body) != 1 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "body must contain exactly one field: status"})
	}
	var status string
	if err := json.Unmarshal(raw, &status); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "status must be a string"})
	}

	out, err := h.uc.UpdateStatus(c.Request().Context(), id, orderID, usecase.UpdateOrderStatusInput{
		Status: status,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
