package policy

import "github.com/BekzhanK1/fms-server/internal/domain/model"

// Identity は認証済みユーザー。
type Identity struct {
	UserID int64
	Role   model.Role
}

type Action string

const (
	ActionManageCategory  Action = "category:manage"  // Adminのみ
	ActionManageFarm      Action = "farm:manage"      // 所有ファーマーのみ
	ActionVerifyFarm      Action = "farm:verify"      // Adminのみ
	ActionManageProduct   Action = "product:manage"   // 商品を持つファームの所有者のみ
	ActionUseBasket       Action = "basket:use"       // バイヤー本人のみ
	ActionCheckout        Action = "order:checkout"   // バイヤー本人のみ
	ActionViewOrder       Action = "order:view"       // 注文のバイヤーのみ
	ActionTransitionOrder Action = "order:transition" // 注文先ファームの所有者のみ
)

// Resource は対象リソースの所有者。所有が意味を持たない操作では 0。
type Resource struct {
	OwnerID int64
}

// Allow は (identity, action, resource) に対する許可判定。
// ロールの壁とリソース所有の壁を1か所に集める。
func Allow(id Identity, action Action, res Resource) bool {
	switch action {
	case ActionManageCategory, ActionVerifyFarm:
		return id.Role == model.RoleAdmin

	case ActionManageFarm, ActionManageProduct, ActionTransitionOrder:
		return id.Role == model.RoleFarmer && id.UserID == res.OwnerID

	case ActionUseBasket, ActionCheckout:
		return id.Role == model.RoleBuyer && id.UserID == res.OwnerID

	case ActionViewOrder:
		return id.UserID == res.OwnerID
	}

	return false
}
