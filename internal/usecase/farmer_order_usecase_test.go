package usecase_test

import (
	"context"
	"testing"

	"github.com/BekzhanK1/fms-server/internal/domain/model"
	repo "github.com/BekzhanK1/fms-server/internal/repository"
	"github.com/BekzhanK1/fms-server/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestFarmerOrderUpdateStatus_InvalidStatus(t *testing.T) {
	tx := new(TxManagerMock)
	uc := usecase.NewFarmerOrderUsecase(tx)

	_, err := uc.UpdateStatus(context.Background(), farmer(1), 1, usecase.UpdateOrderStatusInput{Status: "Shipped"})
	assertErrContains(t, err, "invalid status: Shipped")

	tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestFarmerOrderUpdateStatus_NotFound(t *testing.T) {
	tx := new(TxManagerMock)
	orders := new(OrderRepoMock)
	tx.Repos = &TxReposMock{orders: orders}
	tx.On("WithinTx", mock.Anything).Return(nil)

	orders.On("FindByID", mock.Anything, int64(99)).Return(model.Order{}, repo.ErrNotFound)

	uc := usecase.NewFarmerOrderUsecase(tx)

	_, err := uc.UpdateStatus(context.Background(), farmer(1), 99, usecase.UpdateOrderStatusInput{Status: "Processing"})
	assertErrContains(t, err, "not found")
}

// 注文先ファームの所有者でないファーマーは遷移できない
func TestFarmerOrderUpdateStatus_NotOwner(t *testing.T) {
	tx := new(TxManagerMock)
	orders := new(OrderRepoMock)
	farms := new(FarmRepoMock)
	tx.Repos = &TxReposMock{orders: orders, farms: farms}
	tx.On("WithinTx", mock.Anything).Return(nil)

	orders.On("FindByID", mock.Anything, int64(5)).Return(model.Order{
		ID: 5, FarmID: 3, Status: model.OrderStatusPending,
	}, nil)
	farms.On("FindByID", mock.Anything, int64(3)).Return(model.Farm{ID: 3, FarmerID: 42}, nil)

	uc := usecase.NewFarmerOrderUsecase(tx)

	// farmer 1 は farm 3 の所有者ではない
	_, err := uc.UpdateStatus(context.Background(), farmer(1), 5, usecase.UpdateOrderStatusInput{Status: "Processing"})
	assertErrContains(t, err, "forbidden")

	orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

// バイヤーはそもそも遷移できない
func TestFarmerOrderUpdateStatus_BuyerForbidden(t *testing.T) {
	tx := new(TxManagerMock)
	orders := new(OrderRepoMock)
	farms := new(FarmRepoMock)
	tx.Repos = &TxReposMock{orders: orders, farms: farms}
	tx.On("WithinTx", mock.Anything).Return(nil)

	orders.On("FindByID", mock.Anything, int64(5)).Return(model.Order{
		ID: 5, BuyerID: 7, FarmID: 3, Status: model.OrderStatusPending,
	}, nil)
	farms.On("FindByID", mock.Anything, int64(3)).Return(model.Farm{ID: 3, FarmerID: 7}, nil)

	uc := usecase.NewFarmerOrderUsecase(tx)

	_, err := uc.UpdateStatus(context.Background(), buyer(7), 5, usecase.UpdateOrderStatusInput{Status: "Cancelled"})
	assertErrContains(t, err, "forbidden")
}

func TestFarmerOrderUpdateStatus_ForwardOnly(t *testing.T) {
	tx := new(TxManagerMock)
	orders := new(OrderRepoMock)
	farms := new(FarmRepoMock)
	tx.Repos = &TxReposMock{orders: orders, farms: farms}
	tx.On("WithinTx", mock.Anything).Return(nil)

	orders.On("FindByID", mock.Anything, int64(5)).Return(model.Order{
		ID: 5, FarmID: 3, Status: model.OrderStatusProcessing,
	}, nil)
	farms.On("FindByID", mock.Anything, int64(3)).Return(model.Farm{ID: 3, FarmerID: 1}, nil)

	uc := usecase.NewFarmerOrderUsecase(tx)

	// Processing → Pending への巻き戻しは不可
	_, err := uc.UpdateStatus(context.Background(), farmer(1), 5, usecase.UpdateOrderStatusInput{Status: "Pending"})
	assertErrContains(t, err, "cannot transition from Processing to Pending")
}

func TestFarmerOrderUpdateStatus_TerminalIsFinal(t *testing.T) {
	for _, terminal := range []model.OrderStatus{model.OrderStatusCompleted, model.OrderStatusCancelled} {
		tx := new(TxManagerMock)
		orders := new(OrderRepoMock)
		farms := new(FarmRepoMock)
		tx.Repos = &TxReposMock{orders: orders, farms: farms}
		tx.On("WithinTx", mock.Anything).Return(nil)

		orders.On("FindByID", mock.Anything, int64(5)).Return(model.Order{
			ID: 5, FarmID: 3, Status: terminal,
		}, nil)
		farms.On("FindByID", mock.Anything, int64(3)).Return(model.Farm{ID: 3, FarmerID: 1}, nil)

		uc := usecase.NewFarmerOrderUsecase(tx)

		_, err := uc.UpdateStatus(context.Background(), farmer(1), 5, usecase.UpdateOrderStatusInput{Status: "Processing"})
		assertErrContains(t, err, "cannot transition from "+string(terminal))

		orders.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	}
}

func TestFarmerOrderUpdateStatus_Complete(t *testing.T) {
	tx := new(TxManagerMock)
	orders := new(OrderRepoMock)
	orderItems := new(OrderItemRepoMock)
	farms := new(FarmRepoMock)
	inv := new(InventoryRepoMock)
	tx.Repos = &TxReposMock{orders: orders, orderItems: orderItems, farms: farms, inventory: inv}
	tx.On("WithinTx", mock.Anything).Return(nil)

	orders.On("FindByID", mock.Anything, int64(5)).Return(model.Order{
		ID: 5, BuyerID: 7, FarmID: 3, Status: model.OrderStatusProcessing, TotalPrice: 900,
	}, nil)
	farms.On("FindByID", mock.Anything, int64(3)).Return(model.Farm{ID: 3, FarmerID: 1}, nil)
	orderItems.On("ListByOrderID", mock.Anything, int64(5)).Return([]model.OrderItem{
		{OrderID: 5, ProductID: 100, Quantity: 3},
	}, nil)
	orders.On("UpdateStatus", mock.Anything, int64(5), model.OrderStatusCompleted).Return(nil)

	uc := usecase.NewFarmerOrderUsecase(tx)

	out, err := uc.UpdateStatus(context.Background(), farmer(1), 5, usecase.UpdateOrderStatusInput{Status: "Completed"})
	assert.NoError(t, err)
	assert.Equal(t, "Completed", out.Status)

	// 完了では在庫は動かない
	inv.AssertNotCalled(t, "IncreaseStock", mock.Anything, mock.Anything, mock.Anything)
	orders.AssertExpectations(t)
}

// キャンセルは在庫を明細どおりに戻す
func TestFarmerOrderUpdateStatus_Cancel_RestoresStock(t *testing.T) {
	tx := new(TxManagerMock)
	orders := new(OrderRepoMock)
	orderItems := new(OrderItemRepoMock)
	farms := new(FarmRepoMock)
	inv := new(InventoryRepoMock)
	tx.Repos = &TxReposMock{orders: orders, orderItems: orderItems, farms: farms, inventory: inv}
	tx.On("WithinTx", mock.Anything).Return(nil)

	orders.On("FindByID", mock.Anything, int64(5)).Return(model.Order{
		ID: 5, BuyerID: 7, FarmID: 3, Status: model.OrderStatusPending,
	}, nil)
	farms.On("FindByID", mock.Anything, int64(3)).Return(model.Farm{ID: 3, FarmerID: 1}, nil)
	orderItems.On("ListByOrderID", mock.Anything, int64(5)).Return([]model.OrderItem{
		{OrderID: 5, ProductID: 100, Quantity: 2},
		{OrderID: 5, ProductID: 101, Quantity: 1},
	}, nil)
	inv.On("IncreaseStock", mock.Anything, int64(100), int64(2)).Return(nil)
	inv.On("IncreaseStock", mock.Anything, int64(101), int64(1)).Return(nil)
	orders.On("UpdateStatus", mock.Anything, int64(5), model.OrderStatusCancelled).Return(nil)

	uc := usecase.NewFarmerOrderUsecase(tx)

	out, err := uc.UpdateStatus(context.Background(), farmer(1), 5, usecase.UpdateOrderStatusInput{Status: "Cancelled"})
	assert.NoError(t, err)
	assert.Equal(t, "Cancelled", out.Status)

	inv.AssertExpectations(t)
	orders.AssertExpectations(t)
}

func TestFarmerOrderList_BuyerForbidden(t *testing.T) {
	tx := new(TxManagerMock)
	uc := usecase.NewFarmerOrderUsecase(tx)

	_, err := uc.List(context.Background(), buyer(7), 1, 20)
	assertErrContains(t, err, "forbidden")
}

func TestFarmerOrderList_Success(t *testing.T) {
	tx := new(TxManagerMock)
	orders := new(OrderRepoMock)
	orderItems := new(OrderItemRepoMock)
	tx.Repos = &TxReposMock{orders: orders, orderItems: orderItems}
	tx.On("WithinTx", mock.Anything).Return(nil)

	orders.On("ListByFarmerID", mock.Anything, int64(1), 1, 20).Return([]model.Order{
		{ID: 10, FarmID: 3, Status: model.OrderStatusPending},
		{ID: 11, FarmID: 4, Status: model.OrderStatusProcessing},
	}, int64(2), nil)
	orderItems.On("ListByOrderID", mock.Anything, int64(10)).Return([]model.OrderItem{}, nil)
	orderItems.On("ListByOrderID", mock.Anything, int64(11)).Return([]model.OrderItem{}, nil)

	uc := usecase.NewFarmerOrderUsecase(tx)

	outs, err := uc.List(context.Background(), farmer(1), 1, 20)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(outs))

	orders.AssertExpectations(t)
	orderItems.AssertExpectations(t)
}
