package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"pos/internal/audit"
	"pos/internal/domain/model"
	repo "pos/internal/repository"
	"pos/internal/refid"
	"pos/internal/validator"
)

type ReturnUsecase struct {
	tx       repo.TransactionManager
	settings repo.SettingsRepository
	verifier PINVerifier
	clock    Clock
	audit    audit.Publisher
}

func NewReturnUsecase(
	tx repo.TransactionManager,
	settings repo.SettingsRepository,
	verifier PINVerifier,
	clock Clock,
	auditPub audit.Publisher,
) *ReturnUsecase {
	return &ReturnUsecase{
		tx:       tx,
		settings: settings,
		verifier: verifier,
		clock:    clock,
		audit:    auditPub,
	}
}

type ReturnItemInput struct {
	OriginalSaleItemID int64
	Quantity           int64
	LineTotalCents     int64
	Condition          string
	Reason             string
}

type ProcessReturnInput struct {
	OriginalSaleID int64
	Items          []ReturnItemInput
	ManagerPIN     string
}

type ReturnItemOutput struct {
	ID                   int64  `json:"id"`
	OriginalSaleItemID   int64  `json:"original_sale_item_id"`
	ProductID            int64  `json:"product_id"`
	ProductName          string `json:"product_name"`
	Quantity             int64  `json:"quantity"`
	LineTotalCents       int64  `json:"line_total_cents"`
	Condition            string `json:"condition"`
	Reason               string `json:"reason"`
	RestockedToInventory bool   `json:"restocked_to_inventory"`
}

type ReturnOutput struct {
	ID               int64              `json:"id"`
	ReturnNumber     string             `json:"return_number"`
	OriginalSaleID   int64              `json:"original_sale_id"`
	EmployeeID       int64              `json:"employee_id"`
	RefundTotalCents int64              `json:"refund_total_cents"`
	ApprovedByName   string             `json:"approved_by_name,omitempty"`
	Items            []ReturnItemOutput `json:"items"`
}

// 返品を処理する。
// 書き込みの前に全明細の検証を最後まで走らせる（all-or-nothing）。
// 数量の検証は元のSaleItem行をFOR UPDATEでロックした上で行うので、
// 同じ明細への同時返品があっても「販売数量を超える返品」は起きない。
func (u *ReturnUsecase) ProcessReturn(ctx context.Context, actor Actor, in ProcessReturnInput) (ReturnOutput, error) {
	if actor.ID <= 0 {
		return ReturnOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.OriginalSaleID <= 0 {
		return ReturnOutput{}, NewHTTPError(http.StatusBadRequest, "invalid original_sale_id")
	}
	if len(in.Items) == 0 {
		return ReturnOutput{}, NewHTTPError(http.StatusBadRequest, "items required")
	}
	for _, it := range in.Items {
		if it.OriginalSaleItemID <= 0 {
			return ReturnOutput{}, NewHTTPError(http.StatusBadRequest, "invalid original_sale_item_id")
		}
		if it.LineTotalCents < 0 {
			return ReturnOutput{}, NewHTTPError(http.StatusBadRequest, "invalid line_total_cents")
		}
		if err := validator.ValidateReturnCondition(it.Condition); err != nil {
			return ReturnOutput{}, NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}

	//設定スナップショットを先に取る（以後この値だけを見る）
	settings, err := u.settings.Get(ctx)
	if err != nil {
		return ReturnOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if !settings.ReturnsEnabled {
		return ReturnOutput{}, NewHTTPError(http.StatusBadRequest, "returns are disabled")
	}

	var out ReturnOutput

	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		sale, err := r.Sales().FindByID(ctx, in.OriginalSaleID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "sale not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		now := u.clock.Now()

		//返品期限（0は無期限）
		if settings.ReturnTimeLimitDays > 0 {
			days := int(now.Sub(sale.CreatedAt).Hours() / 24)
			if days > settings.ReturnTimeLimitDays {
				return NewHTTPError(http.StatusBadRequest, "return period expired")
			}
		}

		var refundTotal int64
		for _, it := range in.Items {
			refundTotal += it.LineTotalCents
		}

		needApproval := settings.RequireReturnApproval || refundTotal > settings.ReturnApprovalThresholdCents

		//承認が必要なら店長PINを照合する。
		//どの条件で弾かれたか（PIN不一致か・金額超過か）は外に見せない。
		var approver *model.Employee
		if needApproval {
			mgr, ok := u.findManagerByPIN(ctx, r, in.ManagerPIN)
			if !ok {
				return NewHTTPError(http.StatusUnauthorized, "manager authorization failed")
			}
			approver = &mgr
		}

		//★事前検証パス：1件でも不正なら何も書かずに全体を拒否する。
		//必ず全明細を最後まで見る。
		validated := make([]validatedReturnItem, 0, len(in.Items))
		var faults []string

		for _, it := range in.Items {
			//行ロック付きで取得（同時返品の直列化）
			si, err := r.SaleItems().FindByIDForUpdate(ctx, it.OriginalSaleItemID)
			if errors.Is(err, repo.ErrNotFound) {
				faults = append(faults, fmt.Sprintf("sale item %d not found", it.OriginalSaleItemID))
				continue
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if si.SaleID != sale.ID {
				faults = append(faults, fmt.Sprintf("sale item %d does not belong to sale %d", si.ID, sale.ID))
				continue
			}

			alreadyReturned, err := r.Returns().SumReturnedQuantity(ctx, si.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			availableToReturn := si.Quantity - alreadyReturned

			if it.Quantity <= 0 {
				faults = append(faults, fmt.Sprintf("sale item %d: quantity must be > 0", si.ID))
				continue
			}
			if it.Quantity > availableToReturn {
				faults = append(faults, fmt.Sprintf("sale item %d: only %d available to return", si.ID, availableToReturn))
				continue
			}

			validated = append(validated, validatedReturnItem{in: it, saleItem: si})
		}

		if len(faults) > 0 {
			return NewHTTPError(http.StatusBadRequest, strings.Join(faults, "; "))
		}

		//ここから書き込み。検証はすべて通っている。
		ret := model.Return{
			ReturnNumber:     refid.New("RET", now),
			OriginalSaleID:   sale.ID,
			EmployeeID:       actor.ID,
			RefundTotalCents: refundTotal,
			CreatedAt:        now,
		}
		if approver != nil {
			ret.ApprovedByID = &approver.ID
			ret.ApprovedByName = approver.Name
		}

		returnID, err := r.Returns().Create(ctx, ret)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		items := make([]model.ReturnItem, 0, len(validated))
		for _, v := range validated {
			item := model.ReturnItem{
				OriginalSaleItemID: v.saleItem.ID,
				ProductID:          v.saleItem.ProductID,
				Quantity:           v.in.Quantity,
				LineTotalCents:     v.in.LineTotalCents,
				Condition:          model.ReturnCondition(v.in.Condition),
				Reason:             v.in.Reason,
				CreatedAt:          now,
			}

			//「在庫に戻す」設定が有効で、状態がgoodのときだけ在庫を増やす
			if settings.RestockReturnedItems && item.Condition == model.ReturnConditionGood {
				ok, err := r.Inventory().AdjustStockIfNonNegative(ctx, v.saleItem.ProductID, v.in.Quantity)
				if err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
				if !ok {
					//商品が消えている等。トランザクションごと巻き戻す
					return NewHTTPError(http.StatusConflict, "stock update conflict")
				}
				item.RestockedToInventory = true
			}

			items = append(items, item)
		}

		if err := r.Returns().CreateItems(ctx, returnID, items); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toReturnOutput(returnID, ret, items, validated)
		return nil
	})

	if err != nil {
		return ReturnOutput{}, err
	}

	details := map[string]interface{}{
		"return_number":      out.ReturnNumber,
		"original_sale_id":   out.OriginalSaleID,
		"item_count":         len(out.Items),
		"refund_total_cents": out.RefundTotalCents,
	}
	if out.ApprovedByName != "" {
		details["approved_by"] = out.ApprovedByName
	}
	u.audit.Publish(audit.Event{
		ActorID:      actor.ID,
		ActorName:    actor.Name,
		Action:       model.AuditActionProcessReturn,
		ResourceType: model.AuditResourceReturn,
		ResourceID:   out.ID,
		Details:      details,
	})

	return out, nil
}

// 有効な店長のPINと照合する。一致した店長を返す。
func (u *ReturnUsecase) findManagerByPIN(ctx context.Context, r repo.TxRepos, pin string) (model.Employee, bool) {
	if validator.ValidatePIN(pin) != nil {
		return model.Employee{}, false
	}

	managers, err := r.Employees().ListActiveByRole(ctx, model.RoleManager)
	if err != nil {
		return model.Employee{}, false
	}

	for _, m := range managers {
		if u.verifier.Verify(pin, m.PINHash) {
			return m, true
		}
	}
	return model.Employee{}, false
}

func (u *ReturnUsecase) GetReturn(ctx context.Context, returnID int64) (ReturnOutput, error) {
	if returnID <= 0 {
		return ReturnOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out ReturnOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		ret, err := r.Returns().FindByID(ctx, returnID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		items, err := r.Returns().ListItemsByReturnID(ctx, returnID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = ReturnOutput{
			ID:               ret.ID,
			ReturnNumber:     ret.ReturnNumber,
			OriginalSaleID:   ret.OriginalSaleID,
			EmployeeID:       ret.EmployeeID,
			RefundTotalCents: ret.RefundTotalCents,
			ApprovedByName:   ret.ApprovedByName,
		}
		for _, it := range items {
			out.Items = append(out.Items, ReturnItemOutput{
				ID:                   it.ID,
				OriginalSaleItemID:   it.OriginalSaleItemID,
				ProductID:            it.ProductID,
				Quantity:             it.Quantity,
				LineTotalCents:       it.LineTotalCents,
				Condition:            string(it.Condition),
				Reason:               it.Reason,
				RestockedToInventory: it.RestockedToInventory,
			})
		}
		return nil
	})
	if err != nil {
		return ReturnOutput{}, err
	}
	return out, nil
}

type ReturnListOutput struct {
	Items []model.Return `json:"items"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

func (u *ReturnUsecase) ListReturns(ctx context.Context, page int, limit int) (ReturnListOutput, error) {
	if page < 1 {
		return ReturnListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return ReturnListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	var out ReturnListOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		rets, total, err := r.Returns().List(ctx, page, limit)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		out = ReturnListOutput{Items: rets, Total: total, Page: page, Limit: limit}
		return nil
	})
	if err != nil {
		return ReturnListOutput{}, err
	}
	return out, nil
}

// 事前検証を通過した明細（元のSaleItemスナップショット付き）
type validatedReturnItem struct {
	in       ReturnItemInput
	saleItem model.SaleItem
}

func toReturnOutput(returnID int64, ret model.Return, items []model.ReturnItem, validated []validatedReturnItem) ReturnOutput {
	out := ReturnOutput{
		ID:               returnID,
		ReturnNumber:     ret.ReturnNumber,
		OriginalSaleID:   ret.OriginalSaleID,
		EmployeeID:       ret.EmployeeID,
		RefundTotalCents: ret.RefundTotalCents,
		ApprovedByName:   ret.ApprovedByName,
	}
	for i, it := range items {
		out.Items = append(out.Items, ReturnItemOutput{
			ID:                   it.ID,
			OriginalSaleItemID:   it.OriginalSaleItemID,
			ProductID:            it.ProductID,
			ProductName:          validated[i].saleItem.ProductNameSnapshot,
			Quantity:             it.Quantity,
			LineTotalCents:       it.LineTotalCents,
			Condition:            string(it.Condition),
			Reason:               it.Reason,
			RestockedToInventory: it.RestockedToInventory,
		})
	}
	return out
}
