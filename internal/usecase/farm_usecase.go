package usecase

import (
	"context"
	"net/http"
	"strings"

	"github.com/BekzhanK1/fms-server/internal/domain/model"
	"github.com/BekzhanK1/fms-server/internal/policy"
	repo "github.com/BekzhanK1/fms-server/internal/repository"
)

// FarmUsecase はファームCRUDと検証フラグ。
type FarmUsecase struct {
	farmRepo repo.FarmRepository
}

// DI
func NewFarmUsecase(farmRepo repo.FarmRepository) *FarmUsecase {
	return &FarmUsecase{farmRepo: farmRepo}
}

type SaveFarmInput struct {
	Name      string
	Address   string
	GeoLoc    string
	Size      string
	CropTypes string
}

// ListMyFarms は自分のファーム一覧（ファーマーのみ）。
func (u *FarmUsecase) ListMyFarms(ctx context.Context, id policy.Identity) ([]model.Farm, error) {
	if !policy.Allow(id, policy.ActionManageFarm, policy.Resource{OwnerID: id.UserID}) {
		return []model.Farm{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}

	farms, err := u.farmRepo.ListByFarmerID(ctx, id.UserID)
	if err != nil {
		return []model.Farm{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return farms, nil
}

// Create はファーム作成。is_verified は必ず false から始まる。
func (u *FarmUsecase) Create(ctx context.Context, id policy.Identity, in SaveFarmInput) (model.Farm, error) {
	if !policy.Allow(id, policy.ActionManageFarm, policy.Resource{OwnerID: id.UserID}) {
		return model.Farm{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}
	if err := validateFarmInput(in); err != nil {
		return model.Farm{}, err
	}

	created, err := u.farmRepo.Create(ctx, model.Farm{
		FarmerID:   id.UserID,
		Name:       strings.TrimSpace(in.Name),
		Address:    in.Address,
		GeoLoc:     in.GeoLoc,
		Size:       in.Size,
		CropTypes:  in.CropTypes,
		IsVerified: false,
	})
	if err != nil {
		return model.Farm{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return created, nil
}

// Update はファーム更新（所有者のみ）。
func (u *FarmUsecase) Update(ctx context.Context, id policy.Identity, farmID int64, in SaveFarmInput) (model.Farm, error) {
	if farmID <= 0 {
		return model.Farm{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := validateFarmInput(in); err != nil {
		return model.Farm{}, err
	}

	farm, err := u.farmRepo.FindByID(ctx, farmID)
	if err == repo.ErrNotFound {
		return model.Farm{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Farm{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if !policy.Allow(id, policy.ActionManageFarm, policy.Resource{OwnerID: farm.FarmerID}) {
		return model.Farm{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}

	farm.Name = strings.TrimSpace(in.Name)
	farm.Address = in.Address
	farm.GeoLoc = in.GeoLoc
	farm.Size = in.Size
	farm.CropTypes = in.CropTypes

	if err := u.farmRepo.Update(ctx, farm); err != nil {
		if err == repo.ErrNotFound {
			return model.Farm{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return model.Farm{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return farm, nil
}

// Verify はファーム検証承認（Adminのみ）。
func (u *FarmUsecase) Verify(ctx context.Context, id policy.Identity, farmID int64, verified bool) error {
	if !policy.Allow(id, policy.ActionVerifyFarm, policy.Resource{}) {
		return NewHTTPError(http.StatusForbidden, "forbidden")
	}
	if farmID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := u.farmRepo.SetVerified(ctx, farmID, verified); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func validateFarmInput(in SaveFarmInput) error {
	if strings.TrimSpace(in.Name) == "" || len(in.Name) > 255 {
		return NewHTTPError(http.StatusBadRequest, "invalid name")
	}
	if strings.TrimSpace(in.Address) == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid address")
	}
	return nil
}
