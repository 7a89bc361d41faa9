package repository

import (
	"context"

	"github.com/BekzhanK1/fms-server/internal/domain/model"
)

type FarmRepository interface {
	FindByID(ctx context.Context, id int64) (model.Farm, error)
	ListByFarmerID(ctx context.Context, farmerID int64) ([]model.Farm, error)
	Create(ctx context.Context, f model.Farm) (model.Farm, error)
	Update(ctx context.Context, f model.Farm) error
	// 検証フラグの更新（Admin用）
	SetVerified(ctx context.Context, farmID int64, verified bool) error
}
