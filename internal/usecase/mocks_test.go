package usecase_test

import (
	"context"
	"testing"
	"time"

	"pos/internal/audit"
	"pos/internal/domain/model"
	repo "pos/internal/repository"
	"pos/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// =====================
// Mocks
// =====================

type EmployeeRepoMock struct{ mock.Mock }

func (m *EmployeeRepoMock) FindByID(ctx context.Context, id int64) (model.Employee, error) {
	args := m.Called(ctx, id)
	e, _ := args.Get(0).(model.Employee)
	return e, args.Error(1)
}

func (m *EmployeeRepoMock) ListActiveByRole(ctx context.Context, role model.Role) ([]model.Employee, error) {
	args := m.Called(ctx, role)
	emps, _ := args.Get(0).([]model.Employee)
	return emps, args.Error(1)
}

func (m *EmployeeRepoMock) List(ctx context.Context) ([]model.Employee, error) {
	args := m.Called(ctx)
	emps, _ := args.Get(0).([]model.Employee)
	return emps, args.Error(1)
}

func (m *EmployeeRepoMock) Create(ctx context.Context, e model.Employee) (model.Employee, error) {
	args := m.Called(ctx, e)
	created, _ := args.Get(0).(model.Employee)
	return created, args.Error(1)
}

func (m *EmployeeRepoMock) Update(ctx context.Context, e model.Employee) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *EmployeeRepoMock) SetActive(ctx context.Context, id int64, isActive bool) error {
	args := m.Called(ctx, id, isActive)
	return args.Error(0)
}

type ProductRepoMock struct{ mock.Mock }

func (m *ProductRepoMock) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	args := m.Called(ctx, q)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *ProductRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) FindByBarcode(ctx context.Context, barcode string) (model.Product, error) {
	args := m.Called(ctx, barcode)
	p, _ := args.Get(0).(model.Product)
	return p, args.Error(1)
}

func (m *ProductRepoMock) Create(ctx context.Context, p model.Product) (model.Product, error) {
	args := m.Called(ctx, p)
	created, _ := args.Get(0).(model.Product)
	return created, args.Error(1)
}

func (m *ProductRepoMock) Update(ctx context.Context, p model.Product) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *ProductRepoMock) SoftDelete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ProductRepoMock) ListLowStock(ctx context.Context) ([]model.Product, error) {
	args := m.Called(ctx)
	items, _ := args.Get(0).([]model.Product)
	return items, args.Error(1)
}

type InventoryRepoMock struct{ mock.Mock }

func (m *InventoryRepoMock) AdjustStockIfNonNegative(ctx context.Context, productID int64, delta int64) (bool, error) {
	args := m.Called(ctx, productID, delta)
	return args.Bool(0), args.Error(1)
}

func (m *InventoryRepoMock) SetStock(ctx context.Context, productID int64, newStock int64) error {
	args := m.Called(ctx, productID, newStock)
	return args.Error(0)
}

type SaleRepoMock struct{ mock.Mock }

func (m *SaleRepoMock) Create(ctx context.Context, s model.Sale) (int64, error) {
	args := m.Called(ctx, s)
	return args.Get(0).(int64), args.Error(1)
}

func (m *SaleRepoMock) FindByID(ctx context.Context, id int64) (model.Sale, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(model.Sale)
	return s, args.Error(1)
}

func (m *SaleRepoMock) FindByIdempotencyKey(ctx context.Context, key string) (model.Sale, bool, error) {
	args := m.Called(ctx, key)
	s, _ := args.Get(0).(model.Sale)
	return s, args.Bool(1), args.Error(2)
}

func (m *SaleRepoMock) List(ctx context.Context, page int, limit int) ([]model.Sale, int64, error) {
	args := m.Called(ctx, page, limit)
	items, _ := args.Get(0).([]model.Sale)
	return items, args.Get(1).(int64), args.Error(2)
}

type SaleItemRepoMock struct{ mock.Mock }

func (m *SaleItemRepoMock) CreateBulk(ctx context.Context, saleID int64, items []model.SaleItem) error {
	args := m.Called(ctx, saleID, items)
	return args.Error(0)
}

func (m *SaleItemRepoMock) ListBySaleID(ctx context.Context, saleID int64) ([]model.SaleItem, error) {
	args := m.Called(ctx, saleID)
	items, _ := args.Get(0).([]model.SaleItem)
	return items, args.Error(1)
}

func (m *SaleItemRepoMock) FindByID(ctx context.Context, id int64) (model.SaleItem, error) {
	args := m.Called(ctx, id)
	si, _ := args.Get(0).(model.SaleItem)
	return si, args.Error(1)
}

func (m *SaleItemRepoMock) FindByIDForUpdate(ctx context.Context, id int64) (model.SaleItem, error) {
	args := m.Called(ctx, id)
	si, _ := args.Get(0).(model.SaleItem)
	return si, args.Error(1)
}

type ReturnRepoMock struct{ mock.Mock }

func (m *ReturnRepoMock) Create(ctx context.Context, r model.Return) (int64, error) {
	args := m.Called(ctx, r)
	return args.Get(0).(int64), args.Error(1)
}

func (m *ReturnRepoMock) CreateItems(ctx context.Context, returnID int64, items []model.ReturnItem) error {
	args := m.Called(ctx, returnID, items)
	return args.Error(0)
}

func (m *ReturnRepoMock) FindByID(ctx context.Context, id int64) (model.Return, error) {
	args := m.Called(ctx, id)
	r, _ := args.Get(0).(model.Return)
	return r, args.Error(1)
}

func (m *ReturnRepoMock) ListItemsByReturnID(ctx context.Context, returnID int64) ([]model.ReturnItem, error) {
	args := m.Called(ctx, returnID)
	items, _ := args.Get(0).([]model.ReturnItem)
	return items, args.Error(1)
}

func (m *ReturnRepoMock) List(ctx context.Context, page int, limit int) ([]model.Return, int64, error) {
	args := m.Called(ctx, page, limit)
	items, _ := args.Get(0).([]model.Return)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *ReturnRepoMock) SumReturnedQuantity(ctx context.Context, originalSaleItemID int64) (int64, error) {
	args := m.Called(ctx, originalSaleItemID)
	return args.Get(0).(int64), args.Error(1)
}

type AdjustmentRepoMock struct{ mock.Mock }

func (m *AdjustmentRepoMock) Create(ctx context.Context, adj model.StockAdjustment) (int64, error) {
	args := m.Called(ctx, adj)
	return args.Get(0).(int64), args.Error(1)
}

func (m *AdjustmentRepoMock) FindByID(ctx context.Context, id int64) (model.StockAdjustment, error) {
	args := m.Called(ctx, id)
	adj, _ := args.Get(0).(model.StockAdjustment)
	return adj, args.Error(1)
}

func (m *AdjustmentRepoMock) MarkApproved(ctx context.Context, id int64, approverID int64, at time.Time) error {
	args := m.Called(ctx, id, approverID, at)
	return args.Error(0)
}

func (m *AdjustmentRepoMock) List(ctx context.Context, f repo.AdjustmentListFilter) ([]model.StockAdjustment, error) {
	args := m.Called(ctx, f)
	items, _ := args.Get(0).([]model.StockAdjustment)
	return items, args.Error(1)
}

type CountRepoMock struct{ mock.Mock }

func (m *CountRepoMock) Create(ctx context.Context, c model.InventoryCount) (int64, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(int64), args.Error(1)
}

func (m *CountRepoMock) FindByID(ctx context.Context, id int64) (model.InventoryCount, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(model.InventoryCount)
	return c, args.Error(1)
}

func (m *CountRepoMock) FindByIDForUpdate(ctx context.Context, id int64) (model.InventoryCount, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(model.InventoryCount)
	return c, args.Error(1)
}

func (m *CountRepoMock) FindInProgress(ctx context.Context) (model.InventoryCount, bool, error) {
	args := m.Called(ctx)
	c, _ := args.Get(0).(model.InventoryCount)
	return c, args.Bool(1), args.Error(2)
}

func (m *CountRepoMock) AddItem(ctx context.Context, item model.InventoryCountItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *CountRepoMock) ListItems(ctx context.Context, countID int64) ([]model.InventoryCountItem, error) {
	args := m.Called(ctx, countID)
	items, _ := args.Get(0).([]model.InventoryCountItem)
	return items, args.Error(1)
}

func (m *CountRepoMock) Update(ctx context.Context, c model.InventoryCount) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *CountRepoMock) List(ctx context.Context, page int, limit int) ([]model.InventoryCount, int64, error) {
	args := m.Called(ctx, page, limit)
	items, _ := args.Get(0).([]model.InventoryCount)
	return items, args.Get(1).(int64), args.Error(2)
}

type SettingsRepoMock struct{ mock.Mock }

func (m *SettingsRepoMock) Get(ctx context.Context) (model.Settings, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(model.Settings)
	return s, args.Error(1)
}

func (m *SettingsRepoMock) Update(ctx context.Context, s model.Settings) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

type AuditLogRepoMock struct{ mock.Mock }

func (m *AuditLogRepoMock) Create(ctx context.Context, log model.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *AuditLogRepoMock) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	args := m.Called(ctx, f)
	items, _ := args.Get(0).([]model.AuditLog)
	return items, args.Error(1)
}

// =====================
// Tx（モックrepo一式を閉包に渡す）
// =====================

type txReposStub struct {
	employees   *EmployeeRepoMock
	products    *ProductRepoMock
	inventory   *InventoryRepoMock
	sales       *SaleRepoMock
	saleItems   *SaleItemRepoMock
	returns     *ReturnRepoMock
	adjustments *AdjustmentRepoMock
	counts      *CountRepoMock
	settings    *SettingsRepoMock
}

func newTxReposStub() *txReposStub {
	return &txReposStub{
		employees:   new(EmployeeRepoMock),
		products:    new(ProductRepoMock),
		inventory:   new(InventoryRepoMock),
		sales:       new(SaleRepoMock),
		saleItems:   new(SaleItemRepoMock),
		returns:     new(ReturnRepoMock),
		adjustments: new(AdjustmentRepoMock),
		counts:      new(CountRepoMock),
		settings:    new(SettingsRepoMock),
	}
}

func (s *txReposStub) Employees() repo.EmployeeRepository          { return s.employees }
func (s *txReposStub) Products() repo.ProductRepository            { return s.products }
func (s *txReposStub) Inventory() repo.InventoryRepository         { return s.inventory }
func (s *txReposStub) Sales() repo.SaleRepository                  { return s.sales }
func (s *txReposStub) SaleItems() repo.SaleItemRepository          { return s.saleItems }
func (s *txReposStub) Returns() repo.ReturnRepository              { return s.returns }
func (s *txReposStub) Adjustments() repo.StockAdjustmentRepository { return s.adjustments }
func (s *txReposStub) Counts() repo.InventoryCountRepository       { return s.counts }
func (s *txReposStub) Settings() repo.SettingsRepository           { return s.settings }

type txManagerStub struct {
	repos *txReposStub
}

func (tm *txManagerStub) WithinTx(_ context.Context, fn func(r repo.TxRepos) error) error {
	return fn(tm.repos)
}

// =====================
// その他の部品
// =====================

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.now
}

// PINが特定の文字列、ハッシュが"hash:"+PINのときだけ一致する簡易Verifier
type stubVerifier struct{}

func (stubVerifier) Verify(plain string, hashed string) bool {
	return hashed == "hash:"+plain
}

type stubHasher struct{}

func (stubHasher) Hash(plain string) (string, error) {
	return "hash:" + plain, nil
}

// 発行した監査イベントを記録するPublisher
type recordingPublisher struct {
	events []audit.Event
}

func (p *recordingPublisher) Publish(e audit.Event) {
	p.events = append(p.events, e)
}

// =====================
// Helpers
// =====================

func assertErrContains(t *testing.T, err error, want string) {
	t.Helper()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), want)
}

func assertStatus(t *testing.T, err error, status int) {
	t.Helper()
	assert.Error(t, err)
	he, ok := usecase.AsHTTPError(err)
	assert.True(t, ok)
	assert.Equal(t, status, he.Status)
}

var testNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
