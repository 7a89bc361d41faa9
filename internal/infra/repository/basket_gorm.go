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

type BasketGormRepository struct {
	db *gorm.DB
}

// DI
func NewBasketGormRepository(db *gorm.DB) *BasketGormRepository {
	return &BasketGormRepository{db: db}
}

// バイヤーのバスケットを取得し、無ければ作成
func (r *BasketGormRepository) GetOrCreateByBuyerID(ctx context.Context, buyerID int64) (model.Basket, error) {
	var basket model.Basket

	err := r.db.WithContext(ctx).Where("buyer_id = ?", buyerID).First(&basket).Error
	if err == nil {
		return basket, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Basket{}, err
	}

	now := time.Now()
	newBasket := model.Basket{
		BuyerID:   buyerID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	// 同時作成の一意制約違反はINSERT自体をスキップさせる。
	// トランザクション内でのリトライはPostgresだとaborted扱いになるため使えない。
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&newBasket)
	if res.Error != nil {
		return model.Basket{}, res.Error
	}
	if res.RowsAffected > 0 {
		return newBasket, nil
	}

	// 同時作成に負けたので既存行を取り直す
	return r.FindByBuyerID(ctx, buyerID)
}

func (r *BasketGormRepository) FindByBuyerID(ctx context.Context, buyerID int64) (model.Basket, error) {
	var basket model.Basket

	err := r.db.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		First(&basket).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Basket{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Basket{}, err
	}
	return basket, nil
}

// 指定バスケットの明細を全削除
func (r *BasketGormRepository) Clear(ctx context.Context, basketID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var basket model.Basket
		if err := tx.Where("id = ?", basketID).First(&basket).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return repo.ErrNotFound
			}
			return err
		}

		if err := tx.Where("basket_id = ?", basketID).Delete(&model.BasketItem{}).Error; err != nil {
			return err
		}

		return nil
	})
}
