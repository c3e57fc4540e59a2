package usecase_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"pos/internal/domain/model"
	"pos/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type returnFixture struct {
	repos    *txReposStub
	settings *SettingsRepoMock
	audit    *recordingPublisher
	uc       *usecase.ReturnUsecase
}

func newReturnFixture() *returnFixture {
	repos := newTxReposStub()
	settings := new(SettingsRepoMock)
	pub := &recordingPublisher{}
	uc := usecase.NewReturnUsecase(
		&txManagerStub{repos: repos},
		settings,
		stubVerifier{},
		&fixedClock{now: testNow},
		pub,
	)
	return &returnFixture{repos: repos, settings: settings, audit: pub, uc: uc}
}

func defaultReturnSettings() model.Settings {
	return model.Settings{
		ID:                           model.SettingsRowID,
		ReturnsEnabled:               true,
		ReturnTimeLimitDays:          30,
		RequireReturnApproval:        false,
		ReturnApprovalThresholdCents: 5000,
		RestockReturnedItems:         true,
	}
}

var returnActor = usecase.Actor{ID: 7, Name: "Cashier A", Role: model.RoleCashier}

func TestReturnUsecase_ProcessReturn_ReturnsDisabled(t *testing.T) {
	f := newReturnFixture()

	s := defaultReturnSettings()
	s.ReturnsEnabled = false
	f.settings.On("Get", mock.Anything).Return(s, nil)

	_, err := f.uc.ProcessReturn(context.Background(), returnActor, usecase.ProcessReturnInput{
		OriginalSaleID: 1,
		Items: []usecase.ReturnItemInput{
			{OriginalSaleItemID: 10, Quantity: 1, LineTotalCents: 500, Condition: "good"},
		},
	})
	assertErrContains(t, err, "returns are disabled")
}

func TestReturnUsecase_ProcessReturn_PeriodExpired(t *testing.T) {
	f := newReturnFixture()
	f.settings.On("Get", mock.Anything).Return(defaultReturnSettings(), nil)

	//31日前の販売
	f.repos.sales.On("FindByID", mock.Anything, int64(1)).
		Return(model.Sale{ID: 1, CreatedAt: testNow.AddDate(0, 0, -31)}, nil)

	_, err := f.uc.ProcessReturn(context.Background(), returnActor, usecase.ProcessReturnInput{
		OriginalSaleID: 1,
		Items: []usecase.ReturnItemInput{
			{OriginalSaleItemID: 10, Quantity: 1, LineTotalCents: 500, Condition: "good"},
		},
	})
	assertErrContains(t, err, "return period expired")
	f.repos.returns.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestReturnUsecase_ProcessReturn_OverReturnRejected(t *testing.T) {
	f := newReturnFixture()
	f.settings.On("Get", mock.Anything).Return(defaultReturnSettings(), nil)

	f.repos.sales.On("FindByID", mock.Anything, int64(1)).
		Return(model.Sale{ID: 1, CreatedAt: testNow.Add(-24 * time.Hour)}, nil)

	//販売数量2、すでに1返品済み → 残り1
	f.repos.saleItems.On("FindByIDForUpdate", mock.Anything, int64(10)).
		Return(model.SaleItem{ID: 10, SaleID: 1, ProductID: 100, Quantity: 2}, nil)
	f.repos.returns.On("SumReturnedQuantity", mock.Anything, int64(10)).
		Return(int64(1), nil)

	_, err := f.uc.ProcessReturn(context.Background(), returnActor, usecase.ProcessReturnInput{
		OriginalSaleID: 1,
		Items: []usecase.ReturnItemInput{
			{OriginalSaleItemID: 10, Quantity: 2, LineTotalCents: 1000, Condition: "good"},
		},
	})
	assertErrContains(t, err, "only 1 available to return")
	f.repos.returns.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

// 明細の1つが不正なら、他の明細が正しくても一切書き込まない
func TestReturnUsecase_ProcessReturn_AllOrNothing(t *testing.T) {
	f := newReturnFixture()
	f.settings.On("Get", mock.Anything).Return(defaultReturnSettings(), nil)

	f.repos.sales.On("FindByID", mock.Anything, int64(1)).
		Return(model.Sale{ID: 1, CreatedAt: testNow.Add(-24 * time.Hour)}, nil)

	//1件目は有効
	f.repos.saleItems.On("FindByIDForUpdate", mock.Anything, int64(10)).
		Return(model.SaleItem{ID: 10, SaleID: 1, ProductID: 100, Quantity: 5}, nil)
	f.repos.returns.On("SumReturnedQuantity", mock.Anything, int64(10)).
		Return(int64(0), nil)

	//2件目は別の販売に属する
	f.repos.saleItems.On("FindByIDForUpdate", mock.Anything, int64(20)).
		Return(model.SaleItem{ID: 20, SaleID: 2, ProductID: 200, Quantity: 5}, nil)
	f.repos.returns.On("SumReturnedQuantity", mock.Anything, int64(20)).
		Return(int64(0), nil)

	_, err := f.uc.ProcessReturn(context.Background(), returnActor, usecase.ProcessReturnInput{
		OriginalSaleID: 1,
		Items: []usecase.ReturnItemInput{
			{OriginalSaleItemID: 10, Quantity: 1, LineTotalCents: 500, Condition: "good"},
			{OriginalSaleItemID: 20, Quantity: 1, LineTotalCents: 500, Condition: "good"},
		},
	})
	assertErrContains(t, err, "does not belong to sale")
	f.repos.returns.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.repos.inventory.AssertNotCalled(t, "AdjustStockIfNonNegative", mock.Anything, mock.Anything, mock.Anything)
}

// 承認失敗はPIN不一致でも金額超過でも同じメッセージで返す
func TestReturnUsecase_ProcessReturn_ManagerAuthorizationFailed(t *testing.T) {
	f := newReturnFixture()
	f.settings.On("Get", mock.Anything).Return(defaultReturnSettings(), nil)

	f.repos.sales.On("FindByID", mock.Anything, int64(1)).
		Return(model.Sale{ID: 1, CreatedAt: testNow.Add(-24 * time.Hour)}, nil)

	//有効な店長はいるがPINが合わない
	f.repos.employees.On("ListActiveByRole", mock.Anything, model.RoleManager).
		Return([]model.Employee{{ID: 1, Name: "Manager", Role: model.RoleManager, PINHash: "hash:999999"}}, nil)

	//閾値5000を超える返品
	_, err := f.uc.ProcessReturn(context.Background(), returnActor, usecase.ProcessReturnInput{
		OriginalSaleID: 1,
		Items: []usecase.ReturnItemInput{
			{OriginalSaleItemID: 10, Quantity: 1, LineTotalCents: 9000, Condition: "good"},
		},
		ManagerPIN: "123456",
	})
	assertStatus(t, err, http.StatusUnauthorized)
	assertErrContains(t, err, "manager authorization failed")
	f.repos.saleItems.AssertNotCalled(t, "FindByIDForUpdate", mock.Anything, mock.Anything)
}

func TestReturnUsecase_ProcessReturn_Success_RestocksGoodCondition(t *testing.T) {
	f := newReturnFixture()
	f.settings.On("Get", mock.Anything).Return(defaultReturnSettings(), nil)

	f.repos.sales.On("FindByID", mock.Anything, int64(1)).
		Return(model.Sale{ID: 1, CreatedAt: testNow.Add(-24 * time.Hour)}, nil)

	f.repos.saleItems.On("FindByIDForUpdate", mock.Anything, int64(10)).
		Return(model.SaleItem{ID: 10, SaleID: 1, ProductID: 100, ProductNameSnapshot: "Coffee", Quantity: 3}, nil)
	f.repos.returns.On("SumReturnedQuantity", mock.Anything, int64(10)).
		Return(int64(0), nil)

	f.repos.saleItems.On("FindByIDForUpdate", mock.Anything, int64(11)).
		Return(model.SaleItem{ID: 11, SaleID: 1, ProductID: 101, ProductNameSnapshot: "Mug", Quantity: 1}, nil)
	f.repos.returns.On("SumReturnedQuantity", mock.Anything, int64(11)).
		Return(int64(0), nil)

	f.repos.returns.On("Create", mock.Anything, mock.Anything).Return(int64(55), nil)

	//goodの明細だけ在庫を戻す
	f.repos.inventory.On("AdjustStockIfNonNegative", mock.Anything, int64(100), int64(2)).
		Return(true, nil)

	f.repos.returns.On("CreateItems", mock.Anything, int64(55), mock.Anything).Return(nil)

	out, err := f.uc.ProcessReturn(context.Background(), returnActor, usecase.ProcessReturnInput{
		OriginalSaleID: 1,
		Items: []usecase.ReturnItemInput{
			{OriginalSaleItemID: 10, Quantity: 2, LineTotalCents: 1000, Condition: "good"},
			{OriginalSaleItemID: 11, Quantity: 1, LineTotalCents: 800, Condition: "damaged", Reason: "cracked"},
		},
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(55), out.ID)
	assert.Equal(t, int64(1800), out.RefundTotalCents)
	assert.Equal(t, 2, len(out.Items))
	assert.True(t, out.Items[0].RestockedToInventory)
	assert.False(t, out.Items[1].RestockedToInventory)

	//damagedの商品在庫は触らない
	f.repos.inventory.AssertNotCalled(t, "AdjustStockIfNonNegative", mock.Anything, int64(101), mock.Anything)

	//監査イベントが出ている
	assert.Equal(t, 1, len(f.audit.events))
	assert.Equal(t, model.AuditActionProcessReturn, f.audit.events[0].Action)

	f.repos.returns.AssertExpectations(t)
	f.repos.inventory.AssertExpectations(t)
}

func TestReturnUsecase_ProcessReturn_ApprovedByManager(t *testing.T) {
	f := newReturnFixture()
	f.settings.On("Get", mock.Anything).Return(defaultReturnSettings(), nil)

	f.repos.sales.On("FindByID", mock.Anything, int64(1)).
		Return(model.Sale{ID: 1, CreatedAt: testNow.Add(-24 * time.Hour)}, nil)

	f.repos.employees.On("ListActiveByRole", mock.Anything, model.RoleManager).
		Return([]model.Employee{{ID: 1, Name: "Manager", Role: model.RoleManager, PINHash: "hash:123456"}}, nil)

	f.repos.saleItems.On("FindByIDForUpdate", mock.Anything, int64(10)).
		Return(model.SaleItem{ID: 10, SaleID: 1, ProductID: 100, Quantity: 5}, nil)
	f.repos.returns.On("SumReturnedQuantity", mock.Anything, int64(10)).
		Return(int64(0), nil)

	f.repos.returns.On("Create", mock.Anything, mock.MatchedBy(func(r model.Return) bool {
		return r.ApprovedByID != nil && *r.ApprovedByID == int64(1) && r.ApprovedByName == "Manager"
	})).Return(int64(70), nil)
	f.repos.inventory.On("AdjustStockIfNonNegative", mock.Anything, int64(100), int64(1)).
		Return(true, nil)
	f.repos.returns.On("CreateItems", mock.Anything, int64(70), mock.Anything).Return(nil)

	out, err := f.uc.ProcessReturn(context.Background(), returnActor, usecase.ProcessReturnInput{
		OriginalSaleID: 1,
		Items: []usecase.ReturnItemInput{
			{OriginalSaleItemID: 10, Quantity: 1, LineTotalCents: 9000, Condition: "good"},
		},
		ManagerPIN: "123456",
	})
	assert.NoError(t, err)
	assert.Equal(t, "Manager", out.ApprovedByName)

	f.repos.returns.AssertExpectations(t)
}

func TestReturnUsecase_ProcessReturn_InvalidCondition(t *testing.T) {
	f := newReturnFixture()

	_, err := f.uc.ProcessReturn(context.Background(), returnActor, usecase.ProcessReturnInput{
		OriginalSaleID: 1,
		Items: []usecase.ReturnItemInput{
			{OriginalSaleItemID: 10, Quantity: 1, LineTotalCents: 100, Condition: "broken"},
		},
	})
	assertStatus(t, err, http.StatusBadRequest)
}
