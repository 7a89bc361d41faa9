package repository

import (
	"context"

	"github.com/BekzhanK1/fms-server/internal/domain/model"
)

type UserRepository interface {
	FindByID(ctx context.Context, id int64) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	ExistsByID(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, u model.User) (model.User, error)
	UpdateRole(ctx context.Context, userID int64, role model.Role) error
}
