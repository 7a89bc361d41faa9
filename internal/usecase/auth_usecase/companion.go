package auth

import (
	"context"

	"github.com/BekzhanK1/fms-server/internal/domain/model"
	"github.com/BekzhanK1/fms-server/internal/repository"
)

// CompanionRecords はユーザー作成・ロール切替のあとに呼ぶ明示フック。
// バイヤーには専用バスケットを必ず1つ用意する。
type CompanionRecords struct {
	basketRepo repository.BasketRepository
}

// DI
func NewCompanionRecords(basketRepo repository.BasketRepository) *CompanionRecords {
	return &CompanionRecords{basketRepo: basketRepo}
}

// EnsureFor は不足している付随レコードを作る。既にあれば何もしない。
func (c *CompanionRecords) EnsureFor(ctx context.Context, u model.User) error {
	if u.Role != model.RoleBuyer {
		return nil
	}

	_, err := c.basketRepo.GetOrCreateByBuyerID(ctx, u.ID)
	return err
}
