package repository

import (
	"context"
	"errors"
	"time"

	"github.com/BekzhanK1/fms-server/internal/domain/model"
	repo "github.com/BekzhanK1/fms-server/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BasketItemGormRepository struct {
	db *gorm.DB
}

// DI
func NewBasketItemGormRepository(db *gorm.DB) *BasketItemGormRepository {
	return &BasketItemGormRepository{db: db}
}

// バスケット明細を一覧取得
func (r *BasketItemGormRepository) ListByBasketID(ctx context.Context, basketID int64) ([]model.BasketItem, error) {
	var items []model.BasketItem

	if err := r.db.WithContext(ctx).
		Where("basket_id = ?", basketID).
		Order("id asc").
		Find(&items).Error; err != nil {
		return []model.BasketItem{}, err
	}

	return items, nil
}

func (r *BasketItemGormRepository) FindByID(ctx context.Context, itemID int64) (model.BasketItem, error) {
	var item model.BasketItem

	err := r.db.WithContext(ctx).
		Where("id = ?", itemID).
		First(&item).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.BasketItem{}, repo.ErrNotFound
	}
	if err != nil {
		return model.BasketItem{}, err
	}
	return item, nil
}

// 同一商品は数量加算
func (r *BasketItemGormRepository) UpsertByBasketAndProduct(ctx context.Context, basketID int64, productID int64, addQty int64) error {
	if addQty <= 0 {
		return errors.New("invalid quantity")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item model.BasketItem

		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("basket_id = ? AND product_id = ?", basketID, productID).
			First(&item).Error

		if err == nil {
			// 既存ありだったら数量を増やす
			newQty := item.Quantity + addQty

			res := tx.Model(&model.BasketItem{}).
				Where("id = ?", item.ID).
				Update("quantity", newQty)

			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return repo.ErrNotFound
			}
			return nil
		}

		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		// 無い場合は新規作成
		now := time.Now()
		newItem := model.BasketItem{
			BasketID:  basketID,
			ProductID: productID,
			Quantity:  addQty,
			CreatedAt: now,
			UpdatedAt: now,
		}

		if err := tx.Create(&newItem).Error; err != nil {
			return err
		}

		return nil
	})
}

// 明細の数量を更新
func (r *BasketItemGormRepository) UpdateQuantity(ctx context.Context, itemID int64, qty int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.BasketItem{}).
		Where("id = ?", itemID).
		Update("quantity", qty)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 明細を削除
func (r *BasketItemGormRepository) DeleteByID(ctx context.Context, itemID int64) error {
	res := r.db.WithContext(ctx).Delete(&model.BasketItem{}, itemID)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 明細がそのバイヤーのバスケットに属しているかを判定
func (r *BasketItemGormRepository) IsOwnedByBuyer(ctx context.Context, itemID int64, buyerID int64) (bool, error) {
	var count int64

	err := r.db.WithContext(ctx).
		Table("basket_items").
		Joins("join baskets on baskets.id = basket_items.basket_id").
		Where("basket_items.id = ? AND baskets.buyer_id = ?", itemID, buyerID).
		Count(&count).Error

	if err != nil {
		return false, err
	}

	return count > 0, nil
}
