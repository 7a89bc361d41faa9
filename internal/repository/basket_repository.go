package repository

import (
	"context"

	"github.com/BekzhanK1/fms-server/internal/domain/model"
)

type BasketRepository interface {
	GetOrCreateByBuyerID(ctx context.Context, buyerID int64) (model.Basket, error)
	FindByBuyerID(ctx context.Context, buyerID int64) (model.Basket, error)
	Clear(ctx context.Context, basketID int64) error
}
