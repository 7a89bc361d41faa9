package repository

import (
	"context"
	"errors"

	"github.com/BekzhanK1/fms-server/internal/domain/model"
	repo "github.com/BekzhanK1/fms-server/internal/repository"

	"gorm.io/gorm"
)

type FarmGormRepository struct {
	db *gorm.DB
}

// DI
func NewFarmGormRepository(db *gorm.DB) *FarmGormRepository {
	return &FarmGormRepository{db: db}
}

func (r *FarmGormRepository) FindByID(ctx context.Context, id int64) (model.Farm, error) {
	var f model.Farm
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Farm{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Farm{}, err
	}
	return f, nil
}

func (r *FarmGormRepository) ListByFarmerID(ctx context.Context, farmerID int64) ([]model.Farm, error) {
	var farms []model.Farm
	err := r.db.WithContext(ctx).
		Where("farmer_id = ?", farmerID).
		Order("id asc").
		Find(&farms).Error
	if err != nil {
		return []model.Farm{}, err
	}
	return farms, nil
}

func (r *FarmGormRepository) Create(ctx context.Context, f model.Farm) (model.Farm, error) {
	if err := r.db.WithContext(ctx).Create(&f).Error; err != nil {
		return model.Farm{}, err
	}
	return f, nil
}

func (r *FarmGormRepository) Update(ctx context.Context, f model.Farm) error {
	res := r.db.WithContext(ctx).
		Model(&model.Farm{}).
		Where("id = ?", f.ID).
		Updates(map[string]interface{}{
			"name":       f.Name,
			"address":    f.Address,
			"geo_loc":    f.GeoLoc,
			"size":       f.Size,
			"crop_types": f.CropTypes,
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *FarmGormRepository) SetVerified(ctx context.Context, farmID int64, verified bool) error {
	res := r.db.WithContext(ctx).
		Model(&model.Farm{}).
		Where("id = ?", farmID).
		Update("is_verified", verified)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
