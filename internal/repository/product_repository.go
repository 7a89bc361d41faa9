package repository

import (
	"context"
	"errors"

	"github.com/BekzhanK1/fms-server/internal/domain/model"
)

var ErrNotFound = errors.New("not found")

// 一覧検索
type ProductListQuery struct {
	Page       int
	Limit      int
	Q          string
	CategoryID *int64
	FarmID     *int64
}

// 商品の永続化（保存・取得）だけを約束。
type ProductRepository interface {
	// 認証済みファームの商品だけを公開する
	ListPublic(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	FindByID(ctx context.Context, id int64) (model.Product, error)
	ListByFarmID(ctx context.Context, farmID int64) ([]model.Product, error)

	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error
	Delete(ctx context.Context, id int64) error
}
