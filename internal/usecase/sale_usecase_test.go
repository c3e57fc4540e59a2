package usecase_test

import (
	"context"
	"net/http"
	"testing"

	"pos/internal/domain/model"
	"pos/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newSaleFixture() (*txReposStub, *recordingPublisher, *usecase.SaleUsecase) {
	repos := newTxReposStub()
	pub := &recordingPublisher{}
	uc := usecase.NewSaleUsecase(&txManagerStub{repos: repos}, &fixedClock{now: testNow}, pub)
	return repos, pub, uc
}

var saleActor = usecase.Actor{ID: 7, Name: "Cashier A", Role: model.RoleCashier}

func TestSaleUsecase_CreateSale_Success(t *testing.T) {
	repos, pub, uc := newSaleFixture()

	repos.sales.On("FindByIdempotencyKey", mock.Anything, "key-1").
		Return(model.Sale{}, false, nil)
	repos.products.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{ID: 100, Name: "Coffee", Barcode: "490001", PriceCents: 350, Stock: 10, IsActive: true}, nil)
	repos.inventory.On("AdjustStockIfNonNegative", mock.Anything, int64(100), int64(-2)).
		Return(true, nil)
	repos.sales.On("Create", mock.Anything, mock.MatchedBy(func(s model.Sale) bool {
		return s.TotalCents == 700 && s.EmployeeID == int64(7) &&
			s.IdempotencyKey == "key-1" && s.RequestHash != ""
	})).Return(int64(40), nil)
	repos.saleItems.On("CreateBulk", mock.Anything, int64(40), mock.MatchedBy(func(items []model.SaleItem) bool {
		return len(items) == 1 && items[0].ProductNameSnapshot == "Coffee" &&
			items[0].BarcodeSnapshot == "490001" && items[0].UnitPriceCents == 350
	})).Return(nil)

	out, err := uc.CreateSale(context.Background(), saleActor, usecase.CreateSaleInput{
		Items:          []usecase.SaleItemInput{{ProductID: 100, Quantity: 2}},
		IdempotencyKey: "key-1",
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(40), out.ID)
	assert.Equal(t, int64(700), out.TotalCents)
	assert.Equal(t, "cash", out.PaymentMethod)

	assert.Equal(t, 1, len(pub.events))
	assert.Equal(t, model.AuditActionCreateSale, pub.events[0].Action)

	repos.sales.AssertExpectations(t)
	repos.saleItems.AssertExpectations(t)
}

// 同じキー・同じ本文の再送は同じ販売を返し、在庫は二度減らない
func TestSaleUsecase_CreateSale_IdempotentReplay(t *testing.T) {
	input := usecase.CreateSaleInput{
		Items:          []usecase.SaleItemInput{{ProductID: 100, Quantity: 2}},
		IdempotencyKey: "key-1",
	}

	//1回目の販売で保存される行（本文ハッシュ込み）を捕まえる
	repos, _, uc := newSaleFixture()

	var stored model.Sale
	repos.sales.On("FindByIdempotencyKey", mock.Anything, "key-1").
		Return(model.Sale{}, false, nil)
	repos.products.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{ID: 100, Name: "Coffee", PriceCents: 350, Stock: 10, IsActive: true}, nil)
	repos.inventory.On("AdjustStockIfNonNegative", mock.Anything, int64(100), int64(-2)).
		Return(true, nil)
	repos.sales.On("Create", mock.Anything, mock.MatchedBy(func(s model.Sale) bool {
		stored = s
		return true
	})).Return(int64(40), nil)
	repos.saleItems.On("CreateBulk", mock.Anything, int64(40), mock.Anything).Return(nil)

	first, err := uc.CreateSale(context.Background(), saleActor, input)
	assert.NoError(t, err)
	stored.ID = first.ID

	//同じ本文の再送
	repos2, _, uc2 := newSaleFixture()
	repos2.sales.On("FindByIdempotencyKey", mock.Anything, "key-1").
		Return(stored, true, nil)
	repos2.saleItems.On("ListBySaleID", mock.Anything, int64(40)).
		Return([]model.SaleItem{{ID: 10, SaleID: 40, ProductID: 100, Quantity: 2}}, nil)

	out, err := uc2.CreateSale(context.Background(), saleActor, input)
	assert.NoError(t, err)
	assert.Equal(t, first.ID, out.ID)
	assert.Equal(t, first.SaleNumber, out.SaleNumber)

	repos2.inventory.AssertNotCalled(t, "AdjustStockIfNonNegative", mock.Anything, mock.Anything, mock.Anything)
	repos2.sales.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// 同じキーで本文が違う再送は再生せず409で弾く
func TestSaleUsecase_CreateSale_IdempotencyKeyReusedWithDifferentBody(t *testing.T) {
	repos, _, uc := newSaleFixture()

	input := usecase.CreateSaleInput{
		Items:          []usecase.SaleItemInput{{ProductID: 100, Quantity: 2}},
		IdempotencyKey: "key-1",
	}

	var stored model.Sale
	repos.sales.On("FindByIdempotencyKey", mock.Anything, "key-1").
		Return(model.Sale{}, false, nil).Once()
	repos.products.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{ID: 100, PriceCents: 350, Stock: 10, IsActive: true}, nil)
	repos.inventory.On("AdjustStockIfNonNegative", mock.Anything, int64(100), int64(-2)).
		Return(true, nil)
	repos.sales.On("Create", mock.Anything, mock.MatchedBy(func(s model.Sale) bool {
		stored = s
		return true
	})).Return(int64(40), nil)
	repos.saleItems.On("CreateBulk", mock.Anything, int64(40), mock.Anything).Return(nil)

	_, err := uc.CreateSale(context.Background(), saleActor, input)
	assert.NoError(t, err)
	stored.ID = 40

	//同じキー・別の明細
	repos2, _, uc2 := newSaleFixture()
	repos2.sales.On("FindByIdempotencyKey", mock.Anything, "key-1").
		Return(stored, true, nil)

	_, err = uc2.CreateSale(context.Background(), saleActor, usecase.CreateSaleInput{
		Items:          []usecase.SaleItemInput{{ProductID: 100, Quantity: 5}},
		IdempotencyKey: "key-1",
	})
	assertStatus(t, err, http.StatusConflict)
	assertErrContains(t, err, "idempotency key reused")

	repos2.saleItems.AssertNotCalled(t, "ListBySaleID", mock.Anything, mock.Anything)
	repos2.inventory.AssertNotCalled(t, "AdjustStockIfNonNegative", mock.Anything, mock.Anything, mock.Anything)
}

func TestSaleUsecase_CreateSale_OutOfStock(t *testing.T) {
	repos, _, uc := newSaleFixture()

	repos.sales.On("FindByIdempotencyKey", mock.Anything, "key-1").
		Return(model.Sale{}, false, nil)
	repos.products.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{ID: 100, PriceCents: 350, Stock: 1, IsActive: true}, nil)
	repos.inventory.On("AdjustStockIfNonNegative", mock.Anything, int64(100), int64(-5)).
		Return(false, nil)

	_, err := uc.CreateSale(context.Background(), saleActor, usecase.CreateSaleInput{
		Items:          []usecase.SaleItemInput{{ProductID: 100, Quantity: 5}},
		IdempotencyKey: "key-1",
	})
	assertErrContains(t, err, "out of stock")
	repos.sales.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSaleUsecase_CreateSale_InactiveProductRejected(t *testing.T) {
	repos, _, uc := newSaleFixture()

	repos.sales.On("FindByIdempotencyKey", mock.Anything, "key-1").
		Return(model.Sale{}, false, nil)
	repos.products.On("FindByID", mock.Anything, int64(100)).
		Return(model.Product{ID: 100, PriceCents: 350, IsActive: false}, nil)

	_, err := uc.CreateSale(context.Background(), saleActor, usecase.CreateSaleInput{
		Items:          []usecase.SaleItemInput{{ProductID: 100, Quantity: 1}},
		IdempotencyKey: "key-1",
	})
	assertStatus(t, err, http.StatusBadRequest)
	repos.inventory.AssertNotCalled(t, "AdjustStockIfNonNegative", mock.Anything, mock.Anything, mock.Anything)
}

func TestSaleUsecase_CreateSale_MissingIdempotencyKey(t *testing.T) {
	_, _, uc := newSaleFixture()

	_, err := uc.CreateSale(context.Background(), saleActor, usecase.CreateSaleInput{
		Items: []usecase.SaleItemInput{{ProductID: 100, Quantity: 1}},
	})
	assertStatus(t, err, http.StatusBadRequest)
}
