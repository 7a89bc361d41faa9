package usecase

import (
	"context"
	"net/http"
	"strings"

	"github.com/BekzhanK1/fms-server/internal/domain/model"
	"github.com/BekzhanK1/fms-server/internal/policy"
	repo "github.com/BekzhanK1/fms-server/internal/repository"
)

// CategoryUsecase はカテゴリCRUD。書き込みはAdminのみ。
type CategoryUsecase struct {
	categoryRepo repo.CategoryRepository
}

// DI
func NewCategoryUsecase(categoryRepo repo.CategoryRepository) *CategoryUsecase {
	return &CategoryUsecase{categoryRepo: categoryRepo}
}

type SaveCategoryInput struct {
	Name        string
	Description string
}

func (u *CategoryUsecase) List(ctx context.Context) ([]model.Category, error) {
	cats, err := u.categoryRepo.List(ctx)
	if err != nil {
		return []model.Category{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return cats, nil
}

func (u *CategoryUsecase) Create(ctx context.Context, id policy.Identity, in SaveCategoryInput) (model.Category, error) {
	if !policy.Allow(id, policy.ActionManageCategory, policy.Resource{}) {
		return model.Category{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}
	if strings.TrimSpace(in.Name) == "" || len(in.Name) > 255 {
		return model.Category{}, NewHTTPError(http.StatusBadRequest, "invalid name")
	}

	created, err := u.categoryRepo.Create(ctx, model.Category{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
	})
	if err != nil {
		return model.Category{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return created, nil
}

func (u *CategoryUsecase) Update(ctx context.Context, id policy.Identity, categoryID int64, in SaveCategoryInput) (model.Category, error) {
	if !policy.Allow(id, policy.ActionManageCategory, policy.Resource{}) {
		return model.Category{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}
	if categoryID <= 0 {
		return model.Category{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if strings.TrimSpace(in.Name) == "" || len(in.Name) > 255 {
		return model.Category{}, NewHTTPError(http.StatusBadRequest, "invalid name")
	}

	c := model.Category{
		ID:          categoryID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
	}
	if err := u.categoryRepo.Update(ctx, c); err != nil {
		if err == repo.ErrNotFound {
			return model.Category{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return model.Category{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return c, nil
}

func (u *CategoryUsecase) Delete(ctx context.Context, id policy.Identity, categoryID int64) error {
	if !policy.Allow(id, policy.ActionManageCategory, policy.Resource{}) {
		return NewHTTPError(http.StatusForbidden, "forbidden")
	}
	if categoryID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := u.categoryRepo.Delete(ctx, categoryID); err != nil {
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
