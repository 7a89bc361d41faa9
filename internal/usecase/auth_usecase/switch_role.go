package auth

import (
	"context"
	"errors"

	"github.com/BekzhanK1/fms-server/internal/domain/model"
	"github.com/BekzhanK1/fms-server/internal/repository"
)

// Adminはロール切替不可
var ErrRoleNotSwitchable = errors.New("role cannot be switched")

// SwitchRoleUsecase は Buyer⇔Farmer の切替。
type SwitchRoleUsecase struct {
	userRepo  repository.UserRepository
	companion *CompanionRecords
}

// DI
func NewSwitchRoleUsecase(userRepo repository.UserRepository, companion *CompanionRecords) *SwitchRoleUsecase {
	return &SwitchRoleUsecase{userRepo: userRepo, companion: companion}
}

// Execute はロールを切り替えて、新ロールの付随レコードを用意する。
func (u *SwitchRoleUsecase) Execute(ctx context.Context, userID int64) (model.User, error) {
	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		return model.User{}, err
	}

	next, ok := user.SwitchedRole()
	if !ok {
		return model.User{}, ErrRoleNotSwitchable
	}

	if err := u.userRepo.UpdateRole(ctx, userID, next); err != nil {
		return model.User{}, err
	}
	user.Role = next

	// シグナルではなく明示フック（登録時と同じ経路）
	if err := u.companion.EnsureFor(ctx, user); err != nil {
		return model.User{}, err
	}

	return user, nil
}
