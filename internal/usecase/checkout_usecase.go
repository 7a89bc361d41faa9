package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/BekzhanK1/fms-server/internal/domain/model"
	"github.com/BekzhanK1/fms-server/internal/policy"
	repo "github.com/BekzhanK1/fms-server/internal/repository"
)

// CheckoutUsecase はバスケットをファームごとの注文に変換する。
// 全ファーム分の注文・明細・在庫減算が1トランザクションで確定するか、
// 何も起きないかのどちらか。
type CheckoutUsecase struct {
	tx repo.TransactionManager
}

// DI
func NewCheckoutUsecase(tx repo.TransactionManager) *CheckoutUsecase {
	return &CheckoutUsecase{tx: tx}
}

type OrderItemOutput struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
}

type OrderOutput struct {
	ID         int64             `json:"id"`
	BuyerID    int64             `json:"buyer_id"`
	FarmID     int64             `json:"farm_id"`
	Status     string            `json:"status"`
	TotalPrice int64             `json:"total_price"`
	CreatedAt  time.Time         `json:"created_at"`
	Items      []OrderItemOutput `json:"items"`
}

type CheckoutOutput struct {
	Orders []OrderOutput `json:"orders"`
}

// 1ファーム分の仕掛かり
type farmPartition struct {
	farmID int64
	lines  []checkoutLine
}

type checkoutLine struct {
	product  model.Product
	quantity int64
}

// Checkout はバスケット全体を注文に確定する。
//
// 流れ:
//  1. バスケット存在・非空チェック
//  2. 全明細の在庫プリフライト（不足商品は全部まとめてエラーに載せる）
//  3. ファームごとに分割し、注文＋明細作成と条件付き在庫減算
//  4. バスケットをクリア
//
// 2〜4は同一トランザクション。どの部分が失敗しても全部ロールバックする。
// 在庫減算は `stock >= qty` の条件付きUPDATEなので、プリフライト後に
// 並行チェックアウトと競合しても在庫がマイナスになることはない。
func (u *CheckoutUsecase) Checkout(ctx context.Context, id policy.Identity) (CheckoutOutput, error) {
	if !policy.Allow(id, policy.ActionCheckout, policy.Resource{OwnerID: id.UserID}) {
		return CheckoutOutput{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}

	var out CheckoutOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		basket, err := r.Baskets().FindByBuyerID(ctx, id.UserID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "basket not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		items, err := r.BasketItems().ListByBasketID(ctx, basket.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if len(items) == 0 {
			return NewHTTPError(http.StatusBadRequest, "basket is empty")
		}

		// プリフライト：不足商品を全部集めてから落とす
		partitions, insufficient, err := u.partitionByFarm(ctx, r, items)
		if err != nil {
			return err
		}
		if len(insufficient) > 0 {
			return NewHTTPError(http.StatusBadRequest,
				"insufficient stock for items: "+strings.Join(insufficient, ", "))
		}

		now := time.Now()
		out.Orders = make([]OrderOutput, 0, len(partitions))

		for _, part := range partitions {
			orderItems := make([]model.OrderItem, 0, len(part.lines))
			var total int64 = 0

			for _, line := range part.lines {
				// 条件付き在庫減算。プリフライト後の競合はここで捕まえる。
				ok, err := r.Inventory().DecreaseStockIfEnough(ctx, line.product.ID, line.quantity)
				if err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
				if !ok {
					return NewHTTPError(http.StatusBadRequest,
						"insufficient stock for items: "+line.product.Name)
				}

				// 購入時点の価格をスナップショット
				orderItems = append(orderItems, model.OrderItem{
					ProductID:         line.product.ID,
					ProductName:       line.product.Name,
					UnitPriceSnapshot: line.product.Price,
					Quantity:          line.quantity,
					CreatedAt:         now,
				})
				total += line.product.Price * line.quantity
			}

			orderID, err := r.Orders().Create(ctx, model.Order{
				BuyerID:    id.UserID,
				FarmID:     part.farmID,
				Status:     model.OrderStatusPending,
				TotalPrice: total,
				CreatedAt:  now,
				UpdatedAt:  now,
			})
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			if err := r.OrderItems().CreateBulk(ctx, orderID, orderItems); err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			created := model.Order{
				ID:         orderID,
				BuyerID:    id.UserID,
				FarmID:     part.farmID,
				Status:     model.OrderStatusPending,
				TotalPrice: total,
				CreatedAt:  now,
			}
			out.Orders = append(out.Orders, toOrderOutput(created, orderItems))
		}

		// 全注文が確定したらバスケットを空にする
		if err := r.Baskets().Clear(ctx, basket.ID); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		return nil
	})

	if err != nil {
		return CheckoutOutput{}, err
	}
	return out, nil
}

// partitionByFarm は明細をファームごとにまとめ、在庫不足の商品名を集める。
// 分割順はバスケット明細の並び順で安定。
func (u *CheckoutUsecase) partitionByFarm(ctx context.Context, r repo.TxRepos, items []model.BasketItem) ([]farmPartition, []string, error) {
	partitions := make([]farmPartition, 0, len(items))
	index := make(map[int64]int)
	insufficient := make([]string, 0)

	for _, it := range items {
		p, err := r.Products().FindByID(ctx, it.ProductID)
		if err == repo.ErrNotFound {
			// 商品がもう無い明細も「在庫不足扱い」でまとめて報告はできないので個別に落とす
			return nil, nil, NewHTTPError(http.StatusBadRequest, "product no longer available")
		}
		if err != nil {
			return nil, nil, NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if p.Stock < it.Quantity {
			insufficient = append(insufficient, p.Name)
			continue
		}

		pos, ok := index[p.FarmID]
		if !ok {
			pos = len(partitions)
			index[p.FarmID] = pos
			partitions = append(partitions, farmPartition{farmID: p.FarmID})
		}
		partitions[pos].lines = append(partitions[pos].lines, checkoutLine{
			product:  p,
			quantity: it.Quantity,
		})
	}

	return partitions, insufficient, nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID: it.ProductID,
			Name:      it.ProductName,
			Price:     it.UnitPriceSnapshot,
			Quantity:  it.Quantity,
		})
	}

	return OrderOutput{
		ID:         o.ID,
		BuyerID:    o.BuyerID,
		FarmID:     o.FarmID,
		Status:     string(o.Status),
		TotalPrice: o.TotalPrice,
		CreatedAt:  o.CreatedAt,
		Items:      outItems,
	}
}
