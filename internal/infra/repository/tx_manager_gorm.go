package repository

import (
	"context"

	repo "github.com/BekzhanK1/fms-server/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	orders      repo.OrderRepository
	orderItems  repo.OrderItemRepository
	baskets     repo.BasketRepository
	basketItems repo.BasketItemRepository
	inventory   repo.InventoryRepository
	products    repo.ProductRepository
	farms       repo.FarmRepository
}

func (r *txReposGorm) Orders() repo.OrderRepository           { return r.orders }
func (r *txReposGorm) OrderItems() repo.OrderItemRepository   { return r.orderItems }
func (r *txReposGorm) Baskets() repo.BasketRepository         { return r.baskets }
func (r *txReposGorm) BasketItems() repo.BasketItemRepository { return r.basketItems }
func (r *txReposGorm) Inventory() repo.InventoryRepository    { return r.inventory }
func (r *txReposGorm) Products() repo.ProductRepository       { return r.products }
func (r *txReposGorm) Farms() repo.FarmRepository             { return r.farms }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			orders:      NewOrderGormRepository(tx),
			orderItems:  NewOrderItemGormRepository(tx),
			baskets:     NewBasketGormRepository(tx),
			basketItems: NewBasketItemGormRepository(tx),
			inventory:   NewInventoryGormRepository(tx),
			products:    NewProductGormRepository(tx),
			farms:       NewFarmGormRepository(tx),
		}
		return fn(r)
	})
}
