package model

import "time"

// バスケットの明細。同一商品は1行（追加時は数量加算）。
type BasketItem struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	BasketID  int64     `gorm:"not null;index:idx_basket_product,unique" json:"basket_id"`
	ProductID int64     `gorm:"not null;index:idx_basket_product,unique" json:"product_id"`
	Quantity  int64     `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
