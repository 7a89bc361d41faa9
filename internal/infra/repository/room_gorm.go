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

type RoomGormRepository struct {
	db *gorm.DB
}

// DI
func NewRoomGormRepository(db *gorm.DB) *RoomGormRepository {
	return &RoomGormRepository{db: db}
}

// 正規形キーでルームを取得し、無ければ作成
func (r *RoomGormRepository) GetOrCreateByName(ctx context.Context, name string, user1ID int64, user2ID int64) (model.Room, error) {
	var room model.Room

	err := r.db.WithContext(ctx).Where("name = ?", name).First(&room).Error
	if err == nil {
		return room, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Room{}, err
	}

	newRoom := model.Room{
		Name:      name,
		User1ID:   user1ID,
		User2ID:   user2ID,
		CreatedAt: time.Now(),
	}

	// 同時接続の一意制約違反はINSERT自体をスキップさせる。
	// トランザクション内でのリトライはPostgresだとaborted扱いになるため使えない。
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&newRoom)
	if res.Error != nil {
		return model.Room{}, res.Error
	}
	if res.RowsAffected > 0 {
		return newRoom, nil
	}

	// 同時接続に負けたので既存行を取り直す
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&room).Error; err != nil {
		return model.Room{}, err
	}
	return room, nil
}

func (r *RoomGormRepository) FindByName(ctx context.Context, name string) (model.Room, error) {
	var room model.Room
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Room{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Room{}, err
	}
	return room, nil
}

func (r *RoomGormRepository) ListByUserID(ctx context.Context, userID int64) ([]model.Room, error) {
	var rooms []model.Room
	err := r.db.WithContext(ctx).
		Where("user1_id = ? OR user2_id = ?", userID, userID).
		Order("id asc").
		Find(&rooms).Error
	if err != nil {
		return []model.Room{}, err
	}
	return rooms, nil
}
