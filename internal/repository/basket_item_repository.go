package repository

import (
	"context"

	"github.com/BekzhanK1/fms-server/internal/domain/model"
)

type BasketItemRepository interface {
	ListByBasketID(ctx context.Context, basketID int64) ([]model.BasketItem, error)
	FindByID(ctx context.Context, itemID int64) (model.BasketItem, error)
	// 同一商品はプラス
	UpsertByBasketAndProduct(ctx context.Context, basketID int64, productID int64, addQty int64) error
	UpdateQuantity(ctx context.Context, itemID int64, qty int64) error
	DeleteByID(ctx context.Context, itemID int64) error
	IsOwnedByBuyer(ctx context.Context, itemID int64, buyerID int64) (bool, error)
}
