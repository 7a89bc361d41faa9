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

// /basket のHTTP（バイヤーのみ）
type BasketHandler struct {
	uc *usecase.BasketUsecase
}

func NewBasketHandler(uc *usecase.BasketUsecase) *BasketHandler {
	return &BasketHandler{uc: uc}
}

type AddBasketRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type UpdateBasketItemRequest struct {
	Quantity int64 `json:"quantity"`
}

func (h *BasketHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/basket")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.RoleGuard(string(model.RoleBuyer)))

	g.GET("", h.get)
	g.POST("/items", h.addItem)
	g.PUT("/items/:id", h.updateItem)
	g.DELETE("/items/:id", h.deleteItem)
	g.DELETE("", h.clear)
}

func (h *BasketHandler) get(c echo.Context) error {
	id, ok := getIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	out, err := h.uc.GetBasket(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *BasketHandler) addItem(c echo.Context) error {
	id, ok := getIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req AddBasketRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.AddToBasket(c.Request().Context(), id, usecase.AddBasketInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *BasketHandler) updateItem(c echo.Context) error {
	id, ok := getIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req UpdateBasketItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.UpdateBasketItem(c.Request().Context(), id, itemID, usecase.UpdateBasketItemInput{
		Quantity: req.Quantity,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *BasketHandler) deleteItem(c echo.Context) error {
	id, ok := getIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.DeleteBasketItem(c.Request().Context(), id, itemID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *BasketHandler) clear(c echo.Context) error {
	id, ok := getIdentity(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	if err := h.uc.ClearBasket(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
