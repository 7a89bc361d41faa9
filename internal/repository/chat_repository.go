package repository

import (
	"context"

	"github.com/BekzhanK1/fms-server/internal/domain/model"
)

type RoomRepository interface {
	// 正規形キーでルーム取得、無ければ作成
	GetOrCreateByName(ctx context.Context, name string, user1ID int64, user2ID int64) (model.Room, error)
	FindByName(ctx context.Context, name string) (model.Room, error)
	ListByUserID(ctx context.Context, userID int64) ([]model.Room, error)
}

// メッセージは追記のみ
type MessageRepository interface {
	Create(ctx context.Context, m model.Message) (model.Message, error)
	ListByRoomID(ctx context.Context, roomID int64) ([]model.Message, error)
}
