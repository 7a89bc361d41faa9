package usecase_test

import (
	"context"
	"strings"
	"testing"

	"github.com/BekzhanK1/fms-server/internal/domain/model"
	"github.com/BekzhanK1/fms-server/internal/policy"
	repo "github.com/BekzhanK1/fms-server/internal/repository"
	"github.com/BekzhanK1/fms-server/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// TxManager / TxRepos mocks
// =====================

// TxManagerMock は WithinTx の中で渡す repos を固定して unit テストを回す
type TxManagerMock struct {
	mock.Mock
	Repos repo.TxRepos
}

func (m *TxManagerMock) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	// 呼ばれた事実だけ記録（ctxの具体値は問わない）
	m.Called(ctx)
	return fn(m.Repos)
}

type TxReposMock struct {
	orders      repo.OrderRepository
	orderItems  repo.OrderItemRepository
	baskets     repo.BasketRepository
	basketItems repo.BasketItemRepository
	inventory   repo.InventoryRepository
	products    repo.ProductRepository
	farms       repo.FarmRepository
}

func (r *TxReposMock) Orders() repo.OrderRepository           { return r.orders }
func (r *TxReposMock) OrderItems() repo.OrderItemRepository   { return r.orderItems }
func (r *TxReposMock) Baskets() repo.BasketRepository         { return r.baskets }
func (r *TxReposMock) BasketItems() repo.BasketItemRepository { return r.basketItems }
func (r *TxReposMock) Inventory() repo.InventoryRepository    { return r.inventory }
func (r *TxReposMock) Products() repo.ProductRepository       { return r.products }
func (r *TxReposMock) Farms() repo.FarmRepository             { return r.farms }

// =====================
// Repository mocks
// =====================

type OrderRepoMock struct{ mock.Mock }

func (m *OrderRepoMock) FindByID(ctx context.Context, orderID int64) (model.Order, error) {
	args := m.Called(ctx, orderID)
	o, _ := args.Get(0).(model.Order)
	return o, args.Error(1)
}

func (m *OrderRepoMock) ListByBuyerID(ctx context.Context, buyerID int64, page int, limit int) ([]model.Order, int64, error) {
	args := m.Called(ctx, buyerID, page, limit)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) ListByFarmerID(ctx context.Context, farmerID int64, page int, limit int) ([]model.Order, int64, error) {
	args := m.Called(ctx, farmerID, page, limit)
	orders, _ := args.Get(0).([]model.Order)
	return orders, args.Get(1).(int64), args.Error(2)
}

func (m *OrderRepoMock) Create(ctx context.Context, order model.Order) (int64, error) {
	args := m.Called(ctx, order)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderRepoMock) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

type OrderItemRepoMock struct{ mock.Mock }

func (m *OrderItemRepoMock) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	args := m.Called(ctx, orderID, items)
	return args.Error(0)
}

func (m *OrderItemRepoMock) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	args := m.Called(ctx, orderID)
	items, _ := args.Get(0).([]model.OrderItem)
	return items, args.Error(1)
}

type BasketRepoMock struct{ mock.Mock }

func (m *BasketRepoMock) GetOrCreateByBuyerID(ctx context.Context, buyerID int64) (model.Basket, error) {
	args := m.Called(ctx, buyerID)
	b, _ := args.Get(0).(model.Basket)
	return b, args.Error(1)
}

func (m *BasketRepoMock) FindByBuyerID(ctx context.Context, buyerID int64) (model.Basket, error) {
	args := m.Called(ctx, buyerID)
	b, _ := args.Get(0).(model.Basket)
	return b, args.Error(1)
}

func (m *BasketRepoMock) Clear(ctx context.Context, basketID int64) error {
	args := m.Called(ctx, basketID)
	return args.Error(0)
}

type BasketItemRepoMock struct{ mock.Mock }

func (m *BasketItemRepoMock) ListByBasketID(ctx context.Context, basketID int64) ([]model.BasketItem, error) {
	args := m.Called(ctx, basketID)
	items, _ := args.Get(0).([]model.BasketItem)
	return items, args.Error(1)
}

func (m *BasketItemRepoMock) FindByID(ctx context.Context, itemID int64) (model.BasketItem, error) {
	args := m.Called(ctx, itemID)
	it, _ := args.Get(0).(model.BasketItem)
	return it, args.Error(1)
}

func (m *BasketItemRepoMock) UpsertByBasketAndProduct(ctx context.Context, basketID int64, productID int64, addQty int64) error {
	args := m.Called(ctx, basketID, productID, addQty)
	return args.Error(0)
}

func (m *BasketItemRepoMock) UpdateQuantity(ctx context.Context, itemID int64, qty int64) error {
	args := m.Called(ctx, itemID, qty)
	return args.Error(0)
}

func (m *BasketItemRepoMock) DeleteByID(ctx context.Context, itemID int64) error {
	args := m.Called(ctx, itemID)
	return args.Error(0)
}

func (m *BasketItemRepoMock) IsOwnedByBuyer(ctx context.Context, itemID int64, buyerID int64) (bool, error) {
	args := m.Called(ctx, itemID, buyerID)
	return args.Bool(0), args.Error(1)
}

type InventoryRepoMock struct{ mock.Mock }

func (m *InventoryRepoMock) DecreaseStockIfEnough(ctx context.Context, productID int64, qty int64) (bool, error) {
	args := m.Called(ctx, productID, qty)
	return args.Bool(0), args.Error(1)
}

func (m *InventoryRepoMock) IncreaseStock(ctx context.Context, productID int64, qty int64) error {
	args := m.Called(ctx, productID, qty)
	return args.Error(0)
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) ListPublic(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	ps, _ := args.Get(0).([]model.Product)
	return ps, args.Get(1).(int64), args.Error(2)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) ListByFarmID(ctx context.Context, farmID int64) ([]model.Product, error) {
	args := m.Called(ctx, farmID)
	ps, _ := args.Get(0).([]model.Product)
	return ps, args.Error(1)
}

func (m *ProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	cp, _ := args.Get(0).(model.Product)
	return cp, args.Error(1)
}

func (m *ProductRepoMock) Update(ctx context.Context, p model.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *ProductRepoMock) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type FarmRepoMock struct{ mock.Mock }

func (m *FarmRepoMock) FindByID(ctx context.Context, id int64) (model.Farm, error) {
	args := m.Called(ctx, id)
	f, _ := args.Get(0).(model.Farm)
	return f, args.Error(1)
}

func (m *FarmRepoMock) ListByFarmerID(ctx context.Context, farmerID int64) ([]model.Farm, error) {
	args := m.Called(ctx, farmerID)
	fs, _ := args.Get(0).([]model.Farm)
	return fs, args.Error(1)
}

func (m *FarmRepoMock) Create(ctx context.Context, f model.Farm) (model.Farm, error) {
	args := m.Called(ctx, f)
	cf, _ := args.Get(0).(model.Farm)
	return cf, args.Error(1)
}

func (m *FarmRepoMock) Update(ctx context.Context, f model.Farm) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}

func (m *FarmRepoMock) SetVerified(ctx context.Context, farmID int64, verified bool) error {
	args := m.Called(ctx, farmID, verified)
	return args.Error(0)
}

// =====================
// Helper: error contains（HTTPErrorの実装詳細に依存しない）
// =====================

func assertErrContains(t *testing.T, err error, wantSubstr string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.True(t, strings.Contains(err.Error(), wantSubstr), "err=%q want contains %q", err.Error(), wantSubstr)
	}
}

func buyer(id int64) policy.Identity {
	return policy.Identity{UserID: id, Role: model.RoleBuyer}
}

func farmer(id int64) policy.Identity {
	return policy.Identity{UserID: id, Role: model.RoleFarmer}
}

// =====================
// Checkout tests
// =====================

func TestCheckout_FarmerForbidden(t *testing.T) {
	tx := new(TxManagerMock)
	uc := usecase.NewCheckoutUsecase(tx)

	_, err := uc.Checkout(context.Background(), farmer(1))
	assertErrContains(t, err, "forbidden")

	tx.AssertNotCalled(t, "WithinTx", mock.Anything)
}

func TestCheckout_BasketNotFound(t *testing.T) {
	tx := new(TxManagerMock)
	baskets := new(BasketRepoMock)
	tx.Repos = &TxReposMock{baskets: baskets}
	tx.On("WithinTx", mock.Anything).Return(nil)

	baskets.On("FindByBuyerID", mock.Anything, int64(7)).Return(model.Basket{}, repo.ErrNotFound)

	uc := usecase.NewCheckoutUsecase(tx)

	_, err := uc.Checkout(context.Background(), buyer(7))
	assertErrContains(t, err, "basket not found")
}

func TestCheckout_EmptyBasket(t *testing.T) {
	tx := new(TxManagerMock)
	baskets := new(BasketRepoMock)
	basketItems := new(BasketItemRepoMock)
	tx.Repos = &TxReposMock{baskets: baskets, basketItems: basketItems}
	tx.On("WithinTx", mock.Anything).Return(nil)

	baskets.On("FindByBuyerID", mock.Anything, int64(7)).Return(model.Basket{ID: 1, BuyerID: 7}, nil)
	basketItems.On("ListByBasketID", mock.Anything, int64(1)).Return([]model.BasketItem{}, nil)

	uc := usecase.NewCheckoutUsecase(tx)

	_, err := uc.Checkout(context.Background(), buyer(7))
	assertErrContains(t, err, "basket is empty")

	baskets.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
}

// 不足商品は全部まとめて1エラーで返り、注文も在庫減算も起きない
func TestCheckout_InsufficientStock_CollectsAllNames_NoOrders(t *testing.T) {
	tx := new(TxManagerMock)
	baskets := new(BasketRepoMock)
	basketItems := new(BasketItemRepoMock)
	products := new(ProductRepoMock)
	orders := new(OrderRepoMock)
	inv := new(InventoryRepoMock)
	tx.Repos = &TxReposMock{
		baskets: baskets, basketItems: basketItems,
		products: products, orders: orders, inventory: inv,
	}
	tx.On("WithinTx", mock.Anything).Return(nil)

	baskets.On("FindByBuyerID", mock.Anything, int64(7)).Return(model.Basket{ID: 1, BuyerID: 7}, nil)
	basketItems.On("ListByBasketID", mock.Anything, int64(1)).Return([]model.BasketItem{
		{ID: 1, BasketID: 1, ProductID: 100, Quantity: 5},
		{ID: 2, BasketID: 1, ProductID: 200, Quantity: 2},
		{ID: 3, BasketID: 1, ProductID: 300, Quantity: 10},
	}, nil)

	// 100は足りる、200と300が不足
	products.On("FindByID", mock.Anything, int64(100)).Return(model.Product{ID: 100, FarmID: 1, Name: "Tomato", Price: 300, Stock: 5}, nil)
	products.On("FindByID", mock.Anything, int64(200)).Return(model.Product{ID: 200, FarmID: 2, Name: "Honey", Price: 1500, Stock: 1}, nil)
	products.On("FindByID", mock.Anything, int64(300)).Return(model.Product{ID: 300, FarmID: 2, Name: "Eggs", Price: 400, Stock: 3}, nil)

	uc := usecase.NewCheckoutUsecase(tx)

	_, err := uc.Checkout(context.Background(), buyer(7))
	assertErrContains(t, err, "insufficient stock for items: Honey, Eggs")

	// 全か無か：注文も在庫減算もバスケットクリアも呼ばれない
	orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	inv.AssertNotCalled(t, "DecreaseStockIfEnough", mock.Anything, mock.Anything, mock.Anything)
	baskets.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
}

// 2ファームのバスケットはファームごとに1注文ずつに割れる
func TestCheckout_SplitsPerFarm_WithSnapshotTotals(t *testing.T) {
	ctx := context.Background()

	tx := new(TxManagerMock)
	baskets := new(BasketRepoMock)
	basketItems := new(BasketItemRepoMock)
	products := new(ProductRepoMock)
	orders := new(OrderRepoMock)
	orderItems := new(OrderItemRepoMock)
	inv := new(InventoryRepoMock)
	tx.Repos = &TxReposMock{
		baskets: baskets, basketItems: basketItems, products: products,
		orders: orders, orderItems: orderItems, inventory: inv,
	}
	tx.On("WithinTx", mock.Anything).Return(nil)

	baskets.On("FindByBuyerID", mock.Anything, int64(7)).Return(model.Basket{ID: 1, BuyerID: 7}, nil)
	basketItems.On("ListByBasketID", mock.Anything, int64(1)).Return([]model.BasketItem{
		{ID: 1, BasketID: 1, ProductID: 100, Quantity: 2},
		{ID: 2, BasketID: 1, ProductID: 200, Quantity: 1},
		{ID: 3, BasketID: 1, ProductID: 101, Quantity: 3},
	}, nil)

	// 100と101はファーム1、200はファーム2
	products.On("FindByID", mock.Anything, int64(100)).Return(model.Product{ID: 100, FarmID: 1, Name: "Tomato", Price: 300, Stock: 10}, nil)
	products.On("FindByID", mock.Anything, int64(200)).Return(model.Product{ID: 200, FarmID: 2, Name: "Honey", Price: 1500, Stock: 4}, nil)
	products.On("FindByID", mock.Anything, int64(101)).Return(model.Product{ID: 101, FarmID: 1, Name: "Basil", Price: 200, Stock: 8}, nil)

	inv.On("DecreaseStockIfEnough", mock.Anything, int64(100), int64(2)).Return(true, nil)
	inv.On("DecreaseStockIfEnough", mock.Anything, int64(101), int64(3)).Return(true, nil)
	inv.On("DecreaseStockIfEnough", mock.Anything, int64(200), int64(1)).Return(true, nil)

	// ファーム1：300*2 + 200*3 = 1200、ファーム2：1500*1
	orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.FarmID == 1 && o.BuyerID == 7 && o.TotalPrice == 1200 && o.Status == model.OrderStatusPending
	})).Return(int64(10), nil)
	orders.On("Create", mock.Anything, mock.MatchedBy(func(o model.Order) bool {
		return o.FarmID == 2 && o.BuyerID == 7 && o.TotalPrice == 1500 && o.Status == model.OrderStatusPending
	})).Return(int64(11), nil)

	orderItems.On("CreateBulk", mock.Anything, int64(10), mock.MatchedBy(func(items []model.OrderItem) bool {
		return len(items) == 2 &&
			items[0].ProductID == 100 && items[0].UnitPriceSnapshot == 300 && items[0].Quantity == 2 &&
			items[1].ProductID == 101 && items[1].UnitPriceSnapshot == 200 && items[1].Quantity == 3
	})).Return(nil)
	orderItems.On("CreateBulk", mock.Anything, int64(11), mock.MatchedBy(func(items []model.OrderItem) bool {
		return len(items) == 1 && items[0].ProductID == 200 && items[0].UnitPriceSnapshot == 1500
	})).Return(nil)

	baskets.On("Clear", mock.Anything, int64(1)).Return(nil)

	uc := usecase.NewCheckoutUsecase(tx)

	out, err := uc.Checkout(ctx, buyer(7))
	assert.NoError(t, err)
	assert.Equal(t, 2, len(out.Orders))

	// 分割順はバスケット明細の並び（最初に現れたファームが先）
	assert.Equal(t, int64(1), out.Orders[0].FarmID)
	assert.Equal(t, int64(1200), out.Orders[0].TotalPrice)
	assert.Equal(t, int64(2), out.Orders[1].FarmID)
	assert.Equal(t, int64(1500), out.Orders[1].TotalPrice)
	assert.Equal(t, "Pending", out.Orders[0].Status)

	orders.AssertExpectations(t)
	orderItems.AssertExpectations(t)
	inv.AssertExpectations(t)
	baskets.AssertExpectations(t)
}

// プリフライト通過後に他のチェックアウトと競合した場合、条件付き減算で捕まえて全ロールバック
func TestCheckout_ConcurrentStockRace_FailsWhole(t *testing.T) {
	tx := new(TxManagerMock)
	baskets := new(BasketRepoMock)
	basketItems := new(BasketItemRepoMock)
	products := new(ProductRepoMock)
	orders := new(OrderRepoMock)
	orderItems := new(OrderItemRepoMock)
	inv := new(InventoryRepoMock)
	tx.Repos = &TxReposMock{
		baskets: baskets, basketItems: basketItems, products: products,
		orders: orders, orderItems: orderItems, inventory: inv,
	}
	tx.On("WithinTx", mock.Anything).Return(nil)

	baskets.On("FindByBuyerID", mock.Anything, int64(7)).Return(model.Basket{ID: 1, BuyerID: 7}, nil)
	basketItems.On("ListByBasketID", mock.Anything, int64(1)).Return([]model.BasketItem{
		{ID: 1, BasketID: 1, ProductID: 100, Quantity: 2},
	}, nil)

	// プリフライトでは在庫あり
	products.On("FindByID", mock.Anything, int64(100)).Return(model.Product{ID: 100, FarmID: 1, Name: "Tomato", Price: 300, Stock: 2}, nil)

	// 減算時点では他のトランザクションに先を越された
	inv.On("DecreaseStockIfEnough", mock.Anything, int64(100), int64(2)).Return(false, nil)

	uc := usecase.NewCheckoutUsecase(tx)

	_, err := uc.Checkout(context.Background(), buyer(7))
	assertErrContains(t, err, "insufficient stock for items: Tomato")

	orders.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	baskets.AssertNotCalled(t, "Clear", mock.Anything, mock.Anything)
}

func TestCheckout_ProductGone(t *testing.T) {
	tx := new(TxManagerMock)
	baskets := new(BasketRepoMock)
	basketItems := new(BasketItemRepoMock)
	products := new(ProductRepoMock)
	tx.Repos = &TxReposMock{baskets: baskets, basketItems: basketItems, products: products}
	tx.On("WithinTx", mock.Anything).Return(nil)

	baskets.On("FindByBuyerID", mock.Anything, int64(7)).Return(model.Basket{ID: 1, BuyerID: 7}, nil)
	basketItems.On("ListByBasketID", mock.Anything, int64(1)).Return([]model.BasketItem{
		{ID: 1, BasketID: 1, ProductID: 100, Quantity: 1},
	}, nil)
	products.On("FindByID", mock.Anything, int64(100)).Return(model.Product{}, repo.ErrNotFound)

	uc := usecase.NewCheckoutUsecase(tx)

	_, err := uc.Checkout(context.Background(), buyer(7))
	assertErrContains(t, err, "product no longer available")
}
