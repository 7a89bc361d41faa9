package repository

import (
	"context"

	"github.com/BekzhanK1/fms-server/internal/domain/model"

	"gorm.io/gorm"
)

type MessageGormRepository struct {
	db *gorm.DB
}

// DI
func NewMessageGormRepository(db *gorm.DB) *MessageGormRepository {
	return &MessageGormRepository{db: db}
}

// 追記のみ
func (r *MessageGormRepository) Create(ctx context.Context, m model.Message) (model.Message, error) {
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return model.Message{}, err
	}
	return m, nil
}

// 履歴は古い順
func (r *MessageGormRepository) ListByRoomID(ctx context.Context, roomID int64) ([]model.Message, error) {
	var msgs []model.Message

	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("created_at asc, id asc").
		Find(&msgs).Error
	if err != nil {
		return []model.Message{}, err
	}

	return msgs, nil
}
