package model

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusCompleted  OrderStatus = "Completed"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

// 注文は1バイヤー×1ファーム。チェックアウトでファームごとに分割して作る。
type Order struct {
	ID         int64       `gorm:"primaryKey;autoIncrement" json:"id"`
	BuyerID    int64       `gorm:"not null;index" json:"buyer_id"`
	FarmID     int64       `gorm:"not null;index" json:"farm_id"`
	Status     OrderStatus `gorm:"type:varchar(10);not null;index" json:"status"`
	TotalPrice int64       `gorm:"not null" json:"total_price"`
	CreatedAt  time.Time   `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time   `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// CanTransition は前進のみのステータス遷移を判定する。
// Pending → Processing → Completed、キャンセルは Pending/Processing から。
// Completed と Cancelled は終端。
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return next == OrderStatusProcessing || next == OrderStatusCancelled
	case OrderStatusProcessing:
		return next == OrderStatusCompleted || next == OrderStatusCancelled
	default:
		return false
	}
}

func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled:
		return OrderStatus(s), true
	}
	return "", false
}
