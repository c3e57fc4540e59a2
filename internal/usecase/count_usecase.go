package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"pos/internal/audit"
	"pos/internal/domain/model"
	"pos/internal/refid"
	repo "pos/internal/repository"
)

type InventoryCountUsecase struct {
	tx    repo.TransactionManager
	clock Clock
	audit audit.Publisher
}

func NewInventoryCountUsecase(tx repo.TransactionManager, clock Clock, auditPub audit.Publisher) *InventoryCountUsecase {
	return &InventoryCountUsecase{tx: tx, clock: clock, audit: auditPub}
}

// 棚卸を開始する。進行中の棚卸が1つでもあれば拒否（system-wideで同時に1つだけ）。
func (u *InventoryCountUsecase) Start(ctx context.Context, actor Actor, notes string) (model.InventoryCount, error) {
	if actor.ID <= 0 {
		return model.InventoryCount{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if actor.Role != model.RoleManager {
		return model.InventoryCount{}, NewHTTPError(http.StatusForbidden, "manager only")
	}

	var created model.InventoryCount

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		_, inProgress, err := r.Counts().FindInProgress(ctx)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if inProgress {
			return NewHTTPError(http.StatusBadRequest, "another count is in progress")
		}

		now := u.clock.Now()
		c := model.InventoryCount{
			CountNumber: refid.New("CNT", now),
			Status:      model.CountStatusInProgress,
			StartedByID: actor.ID,
			Notes:       notes,
			StartedAt:   now,
		}
		id, err := r.Counts().Create(ctx, c)
		if errors.Is(err, repo.ErrConflict) {
			//同時Startの片方がINSERTまで進んだ場合、部分一意インデックスに当たる
			return NewHTTPError(http.StatusConflict, "another count is in progress")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		c.ID = id
		created = c
		return nil
	})
	if err != nil {
		return model.InventoryCount{}, err
	}

	u.audit.Publish(audit.Event{
		ActorID:      actor.ID,
		ActorName:    actor.Name,
		Action:       model.AuditActionStartCount,
		ResourceType: model.AuditResourceCount,
		ResourceID:   created.ID,
		Details:      map[string]interface{}{"count_number": created.CountNumber},
	})

	return created, nil
}

type AddCountItemInput struct {
	ProductID       int64
	CountedQuantity int64
}

// 棚卸に明細を追加する。
// variance = counted − system、varianceValue = variance × 原価。
// 追加のたびに集計列（件数・差異件数・減耗額・過剰額・純差異額）を更新する。
func (u *InventoryCountUsecase) AddItem(ctx context.Context, actor Actor, countID int64, in AddCountItemInput) (model.InventoryCountItem, error) {
	if actor.ID <= 0 {
		return model.InventoryCountItem{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if countID <= 0 {
		return model.InventoryCountItem{}, NewHTTPError(http.StatusBadRequest, "invalid count id")
	}
	if in.ProductID <= 0 {
		return model.InventoryCountItem{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.CountedQuantity < 0 {
		return model.InventoryCountItem{}, NewHTTPError(http.StatusBadRequest, "counted_quantity must be >= 0")
	}

	var created model.InventoryCountItem

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//集計列のread-modify-writeを直列化するため行ロックで取る
		c, err := r.Counts().FindByIDForUpdate(ctx, countID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "count not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if c.Status != model.CountStatusInProgress {
			return NewHTTPError(http.StatusBadRequest, "count is not in progress")
		}

		p, err := r.Products().FindByID(ctx, in.ProductID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "product not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		variance := in.CountedQuantity - p.Stock
		varianceValue := variance * p.CostCents

		item := model.InventoryCountItem{
			CountID:             c.ID,
			ProductID:           p.ID,
			ProductNameSnapshot: p.Name,
			SystemQuantity:      p.Stock,
			CountedQuantity:     in.CountedQuantity,
			Variance:            variance,
			VarianceValueCents:  varianceValue,
			CountedAt:           u.clock.Now(),
		}
		if err := r.Counts().AddItem(ctx, item); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//集計を更新
		c.TotalItemsCounted++
		if variance != 0 {
			c.TotalDiscrepancies++
		}
		if variance < 0 {
			//減耗は正の金額で積む
			c.TotalShrinkageCents += -varianceValue
		}
		if variance > 0 {
			c.TotalOverageCents += varianceValue
		}
		c.NetVarianceCents += varianceValue

		if err := r.Counts().Update(ctx, c); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		created = item
		return nil
	})
	if err != nil {
		return model.InventoryCountItem{}, err
	}
	return created, nil
}

// 棚卸を確定する（終端状態）。
// applyAdjustments=true なら差異のある全明細について、
// 在庫をcountedQuantityに合わせ、CORRECTIONの在庫調整（自動承認）を1件ずつ作る。
// すべて1トランザクション内：途中で失敗したら何も反映されない。
func (u *InventoryCountUsecase) Complete(ctx context.Context, actor Actor, countID int64, applyAdjustments bool) (model.InventoryCount, error) {
	if actor.ID <= 0 {
		return model.InventoryCount{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if actor.Role != model.RoleManager {
		return model.InventoryCount{}, NewHTTPError(http.StatusForbidden, "manager only")
	}
	if countID <= 0 {
		return model.InventoryCount{}, NewHTTPError(http.StatusBadRequest, "invalid count id")
	}

	var completed model.InventoryCount
	var adjusted int

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		//終端遷移は行ロックの下で行う。同時のComplete/Cancelはここで待たされ、
		//後から来た側はstatus検査で落ちる
		c, err := r.Counts().FindByIDForUpdate(ctx, countID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "count not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if c.Status != model.CountStatusInProgress {
			return NewHTTPError(http.StatusBadRequest, "count is not in progress")
		}

		now := u.clock.Now()

		if applyAdjustments {
			items, err := r.Counts().ListItems(ctx, c.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}

			for _, item := range items {
				if item.Variance == 0 {
					continue
				}

				//在庫を数えた値に合わせる
				if err := r.Inventory().SetStock(ctx, item.ProductID, item.CountedQuantity); err != nil {
					if errors.Is(err, repo.ErrNotFound) {
						return NewHTTPError(http.StatusConflict, fmt.Sprintf("product %d no longer exists", item.ProductID))
					}
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}

				//CORRECTIONの調整履歴を自動承認で残す
				adj := model.StockAdjustment{
					ProductID:        item.ProductID,
					EmployeeID:       actor.ID,
					Type:             model.AdjustmentTypeCorrection,
					QuantityChange:   item.Variance,
					QuantityBefore:   item.SystemQuantity,
					QuantityAfter:    item.CountedQuantity,
					CostImpactCents:  item.VarianceValueCents,
					Reason:           "inventory count reconciliation",
					ReferenceNumber:  c.CountNumber,
					RequiresApproval: false,
					IsApproved:       true,
					ApprovedByID:     &actor.ID,
					ApprovedAt:       &now,
				}
				if _, err := r.Adjustments().Create(ctx, adj); err != nil {
					return NewHTTPError(http.StatusInternalServerError, "db error")
				}
				adjusted++
			}
		}

		c.Status = model.CountStatusCompleted
		c.CompletedByID = &actor.ID
		c.CompletedAt = &now
		if err := r.Counts().Update(ctx, c); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				//行ロックの取りこぼしはないはずだが、条件付きUPDATEの空振りは二重確定として扱う
				return NewHTTPError(http.StatusConflict, "count already finalized")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		completed = c
		return nil
	})
	if err != nil {
		return model.InventoryCount{}, err
	}

	u.audit.Publish(audit.Event{
		ActorID:      actor.ID,
		ActorName:    actor.Name,
		Action:       model.AuditActionCompleteCount,
		ResourceType: model.AuditResourceCount,
		ResourceID:   completed.ID,
		Details: map[string]interface{}{
			"count_number":       completed.CountNumber,
			"applied":            applyAdjustments,
			"adjustments":        adjusted,
			"net_variance_cents": completed.NetVarianceCents,
		},
	})

	return completed, nil
}

// 棚卸を中止する（終端状態）。在庫は一切動かさない。
func (u *InventoryCountUsecase) Cancel(ctx context.Context, actor Actor, countID int64) (model.InventoryCount, error) {
	if actor.ID <= 0 {
		return model.InventoryCount{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if actor.Role != model.RoleManager {
		return model.InventoryCount{}, NewHTTPError(http.StatusForbidden, "manager only")
	}
	if countID <= 0 {
		return model.InventoryCount{}, NewHTTPError(http.StatusBadRequest, "invalid count id")
	}

	var cancelled model.InventoryCount

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		c, err := r.Counts().FindByIDForUpdate(ctx, countID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "count not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if c.Status != model.CountStatusInProgress {
			return NewHTTPError(http.StatusBadRequest, "count is not in progress")
		}

		now := u.clock.Now()
		c.Status = model.CountStatusCancelled
		c.CompletedByID = &actor.ID
		c.CompletedAt = &now
		if err := r.Counts().Update(ctx, c); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return NewHTTPError(http.StatusConflict, "count already finalized")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		cancelled = c
		return nil
	})
	if err != nil {
		return model.InventoryCount{}, err
	}

	u.audit.Publish(audit.Event{
		ActorID:      actor.ID,
		ActorName:    actor.Name,
		Action:       model.AuditActionCancelCount,
		ResourceType: model.AuditResourceCount,
		ResourceID:   cancelled.ID,
		Details:      map[string]interface{}{"count_number": cancelled.CountNumber},
	})

	return cancelled, nil
}

type CountDetailOutput struct {
	Count model.InventoryCount       `json:"count"`
	Items []model.InventoryCountItem `json:"items"`
}

func (u *InventoryCountUsecase) Get(ctx context.Context, countID int64) (CountDetailOutput, error) {
	if countID <= 0 {
		return CountDetailOutput{}, NewHTTPError(http.StatusBadRequest, "invalid count id")
	}

	var out CountDetailOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		c, err := r.Counts().FindByID(ctx, countID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		items, err := r.Counts().ListItems(ctx, c.ID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = CountDetailOutput{Count: c, Items: items}
		return nil
	})
	if err != nil {
		return CountDetailOutput{}, err
	}
	return out, nil
}

type CountListOutput struct {
	Items []model.InventoryCount `json:"items"`
	Total int64                  `json:"total"`
	Page  int                    `json:"page"`
	Limit int                    `json:"limit"`
}

func (u *InventoryCountUsecase) List(ctx context.Context, page int, limit int) (CountListOutput, error) {
	if page < 1 {
		return CountListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return CountListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	var out CountListOutput
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		counts, total, err := r.Counts().List(ctx, page, limit)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		out = CountListOutput{Items: counts, Total: total, Page: page, Limit: limit}
		return nil
	})
	if err != nil {
		return CountListOutput{}, err
	}
	return out, nil
}
