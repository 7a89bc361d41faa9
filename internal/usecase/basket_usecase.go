package usecase

import (
	"context"
	"net/http"

	"github.com/BekzhanK1/fms-server/internal/policy"
	repo "github.com/BekzhanK1/fms-server/internal/repository"
)

// BasketUsecase は /basket の業務ロジック。
type BasketUsecase struct {
	basketRepo     repo.BasketRepository
	basketItemRepo repo.BasketItemRepository
	productRepo    repo.ProductRepository
}

// DI
func NewBasketUsecase(
	basketRepo repo.BasketRepository,
	basketItemRepo repo.BasketItemRepository,
	productRepo repo.ProductRepository,
) *BasketUsecase {
	return &BasketUsecase{
		basketRepo:     basketRepo,
		basketItemRepo: basketItemRepo,
		productRepo:    productRepo,
	}
}

// price は現在の商品価格を返す（確定はチェックアウト時）。
type BasketItemResponse struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
}

type BasketResponse struct {
	Items []BasketItemResponse `json:"items"`
	Total int64                `json:"total"`
}

type AddBasketInput struct {
	ProductID int64
	Quantity  int64
}

type UpdateBasketItemInput struct {
	Quantity int64
}

// GetBasket はバスケット取得（無ければ作って空を返す）。
func (u *BasketUsecase) GetBasket(ctx context.Context, id policy.Identity) (BasketResponse, error) {
	if !policy.Allow(id, policy.ActionUseBasket, policy.Resource{OwnerID: id.UserID}) {
		return BasketResponse{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}

	basket, err := u.basketRepo.GetOrCreateByBuyerID(ctx, id.UserID)
	if err != nil {
		return BasketResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildBasketResponse(ctx, basket.ID)
}

// AddToBasket はバスケットに追加（同一商品は数量加算）。
func (u *BasketUsecase) AddToBasket(ctx context.Context, id policy.Identity, in AddBasketInput) (BasketResponse, error) {
	if !policy.Allow(id, policy.ActionUseBasket, policy.Resource{OwnerID: id.UserID}) {
		return BasketResponse{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}
	if in.ProductID <= 0 {
		return BasketResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Quantity < 1 {
		return BasketResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	basket, err := u.basketRepo.GetOrCreateByBuyerID(ctx, id.UserID)
	if err != nil {
		return BasketResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	p, err := u.productRepo.FindByID(ctx, in.ProductID)
	if err == repo.ErrNotFound {
		return BasketResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if err != nil {
		return BasketResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	// 既存数量と合算した数量が在庫を超えないか
	items, err := u.basketItemRepo.ListByBasketID(ctx, basket.ID)
	if err != nil {
		return BasketResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	var existingQty int64 = 0
	for _, it := range items {
		if it.ProductID == in.ProductID {
			existingQty = it.Quantity
			break
		}
	}

	if existingQty+in.Quantity > p.Stock {
		return BasketResponse{}, NewHTTPError(http.StatusBadRequest, "not enough stock for "+p.Name)
	}

	if err := u.basketItemRepo.UpsertByBasketAndProduct(ctx, basket.ID, in.ProductID, in.Quantity); err != nil {
		return BasketResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildBasketResponse(ctx, basket.ID)
}

// 数量変更（所有チェック＋在庫チェック）。
func (u *BasketUsecase) UpdateBasketItem(ctx context.Context, id policy.Identity, itemID int64, in UpdateBasketItemInput) (BasketResponse, error) {
	if !policy.Allow(id, policy.ActionUseBasket, policy.Resource{OwnerID: id.UserID}) {
		return BasketResponse{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}
	if itemID <= 0 {
		return BasketResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if in.Quantity < 1 {
		return BasketResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	owned, err := u.basketItemRepo.IsOwnedByBuyer(ctx, itemID, id.UserID)
	if err != nil {
		return BasketResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !owned {
		return BasketResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	item, err := u.basketItemRepo.FindByID(ctx, itemID)
	if err != nil {
		return BasketResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	p, err := u.productRepo.FindByID(ctx, item.ProductID)
	if err != nil {
		return BasketResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if in.Quantity > p.Stock {
		return BasketResponse{}, NewHTTPError(http.StatusBadRequest, "not enough stock for "+p.Name)
	}

	if err := u.basketItemRepo.UpdateQuantity(ctx, itemID, in.Quantity); err != nil {
		return BasketResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildBasketResponse(ctx, item.BasketID)
}

// 明細削除（所有チェック）。
func (u *BasketUsecase) DeleteBasketItem(ctx context.Context, id policy.Identity, itemID int64) (BasketResponse, error) {
	if !policy.Allow(id, policy.ActionUseBasket, policy.Resource{OwnerID: id.UserID}) {
		return BasketResponse{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}
	if itemID <= 0 {
		return BasketResponse{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	owned, err := u.basketItemRepo.IsOwnedByBuyer(ctx, itemID, id.UserID)
	if err != nil {
		return BasketResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !owned {
		return BasketResponse{}, NewHTTPError(http.StatusNotFound, "not found")
	}

	item, err := u.basketItemRepo.FindByID(ctx, itemID)
	if err != nil {
		return BasketResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.basketItemRepo.DeleteByID(ctx, itemID); err != nil {
		return BasketResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return u.buildBasketResponse(ctx, item.BasketID)
}

// ClearBasket は明細を全削除する。
func (u *BasketUsecase) ClearBasket(ctx context.Context, id policy.Identity) error {
	if !policy.Allow(id, policy.ActionUseBasket, policy.Resource{OwnerID: id.UserID}) {
		return NewHTTPError(http.StatusForbidden, "forbidden")
	}

	basket, err := u.basketRepo.FindByBuyerID(ctx, id.UserID)
	if err == repo.ErrNotFound {
		return NewHTTPError(http.StatusNotFound, "basket not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if err := u.basketRepo.Clear(ctx, basket.ID); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *BasketUsecase) buildBasketResponse(ctx context.Context, basketID int64) (BasketResponse, error) {
	items, err := u.basketItemRepo.ListByBasketID(ctx, basketID)
	if err != nil {
		return BasketResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	out := BasketResponse{Items: make([]BasketItemResponse, 0, len(items))}
	for _, it := range items {
		p, err := u.productRepo.FindByID(ctx, it.ProductID)
		if err != nil {
			return BasketResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		out.Items = append(out.Items, BasketItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Name:      p.Name,
			Price:     p.Price,
			Quantity:  it.Quantity,
		})
		out.Total += p.Price * it.Quantity
	}

	return out, nil
}
