package usecase

import (
	"context"
	"net/http"

	"github.com/BekzhanK1/fms-server/internal/domain/model"
	"github.com/BekzhanK1/fms-server/internal/policy"
	repo "github.com/BekzhanK1/fms-server/internal/repository"
)

// FarmerOrderUsecase はファーマー側の注文一覧とステータス遷移。
type FarmerOrderUsecase struct {
	tx repo.TransactionManager
}

// DI
func NewFarmerOrderUsecase(tx repo.TransactionManager) *FarmerOrderUsecase {
	return &FarmerOrderUsecase{tx: tx}
}

type UpdateOrderStatusInput struct {
	Status string
}

// List は自分のファーム宛の注文一覧。
func (u *FarmerOrderUsecase) List(ctx context.Context, id policy.Identity, page int, limit int) ([]OrderOutput, error) {
	if id.Role != model.RoleFarmer {
		return []OrderOutput{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListByFarmerID(ctx, id.UserID, page, limit)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			outs = append(outs, toOrderOutput(o, items))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

// UpdateStatus は注文ステータスを遷移させる。
// 遷移できるのは注文先ファームの所有ファーマーだけ。
// 前進のみ：Pending→Processing→Completed、Cancelled は Pending/Processing から。
// Cancelled にしたときは在庫を戻す。
func (u *FarmerOrderUsecase) UpdateStatus(ctx context.Context, id policy.Identity, orderID int64, in UpdateOrderStatusInput) (OrderOutput, error) {
	if orderID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	newStatus, ok := model.ParseOrderStatus(in.Status)
	if !ok {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid status: "+in.Status)
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		farm, err := r.Farms().FindByID(ctx, o.FarmID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if !policy.Allow(id, policy.ActionTransitionOrder, policy.Resource{OwnerID: farm.FarmerID}) {
			return NewHTTPError(http.StatusForbidden, "forbidden")
		}

		if !o.Status.CanTransition(newStatus) {
			return NewHTTPError(http.StatusBadRequest,
				"cannot transition from "+string(o.Status)+" to "+string(newStatus))
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		// キャンセル時だけ在庫戻し
		if newStatus == model.OrderStatusCancelled {
			for _, it := range items {
				if err := r.Inventory().IncreaseStock(ctx, it.ProductID, it.Quantity); err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
			}
		}

		if err := r.Orders().UpdateStatus(ctx, orderID, newStatus); err != nil {
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusNotFound, "not found")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		o.Status = newStatus
		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}
