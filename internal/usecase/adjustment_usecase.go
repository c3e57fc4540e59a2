package usecase

import (
	"context"
	"errors"
	"net/http"

	"pos/internal/audit"
	"pos/internal/domain/model"
	repo "pos/internal/repository"
	"pos/internal/validator"
)

// 承認が必要になる閾値
const (
	approvalQuantityThreshold  int64 = 50
	approvalCostThresholdCents int64 = 50000
)

type StockAdjustmentUsecase struct {
	tx    repo.TransactionManager
	clock Clock
	audit audit.Publisher
}

func NewStockAdjustmentUsecase(tx repo.TransactionManager, clock Clock, auditPub audit.Publisher) *StockAdjustmentUsecase {
	return &StockAdjustmentUsecase{tx: tx, clock: clock, audit: auditPub}
}

type CreateAdjustmentInput struct {
	ProductID       int64
	Type            string
	QuantityChange  int64
	Reason          string
	Notes           string
	ReferenceNumber string
}

// 在庫調整を作成する。
// 閾値を超える調整（またはTHEFT）は承認待ちになり、在庫は承認まで動かさない。
func (u *StockAdjustmentUsecase) Create(ctx context.Context, actor Actor, in CreateAdjustmentInput) (model.StockAdjustment, error) {
	if actor.ID <= 0 {
		return model.StockAdjustment{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.ProductID <= 0 {
		return model.StockAdjustment{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if err := validator.ValidateAdjustment(validator.AdjustmentInput{
		Type:           in.Type,
		QuantityChange: in.QuantityChange,
		Reason:         in.Reason,
	}); err != nil {
		return model.StockAdjustment{}, NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var created model.StockAdjustment

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		p, err := r.Products().FindByID(ctx, in.ProductID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "product not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		newQuantity := p.Stock + in.QuantityChange
		if newQuantity < 0 {
			return NewHTTPError(http.StatusBadRequest, "resulting stock would be negative")
		}

		costImpact := in.QuantityChange * p.CostCents

		requiresApproval := abs64(in.QuantityChange) > approvalQuantityThreshold ||
			abs64(costImpact) > approvalCostThresholdCents ||
			model.AdjustmentType(in.Type) == model.AdjustmentTypeTheft

		adj := model.StockAdjustment{
			ProductID:        p.ID,
			EmployeeID:       actor.ID,
			Type:             model.AdjustmentType(in.Type),
			QuantityChange:   in.QuantityChange,
			QuantityBefore:   p.Stock,
			QuantityAfter:    newQuantity,
			CostImpactCents:  costImpact,
			Reason:           in.Reason,
			Notes:            in.Notes,
			ReferenceNumber:  in.ReferenceNumber,
			RequiresApproval: requiresApproval,
			IsApproved:       !requiresApproval,
		}

		id, err := r.Adjustments().Create(ctx, adj)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		adj.ID = id

		//承認不要なら同じトランザクションで在庫に反映する
		if !requiresApproval {
			ok, err := r.Inventory().AdjustStockIfNonNegative(ctx, p.ID, in.QuantityChange)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				//同時更新で在庫が動いた。部分適用はしない
				return NewHTTPError(http.StatusConflict, "stock update conflict")
			}
		}

		created = adj
		return nil
	})
	if err != nil {
		return model.StockAdjustment{}, err
	}

	u.audit.Publish(audit.Event{
		ActorID:      actor.ID,
		ActorName:    actor.Name,
		Action:       model.AuditActionCreateAdjustment,
		ResourceType: model.AuditResourceAdjustment,
		ResourceID:   created.ID,
		Details: map[string]interface{}{
			"product_id":        created.ProductID,
			"type":              string(created.Type),
			"quantity_change":   created.QuantityChange,
			"cost_impact_cents": created.CostImpactCents,
			"requires_approval": created.RequiresApproval,
		},
	})

	return created, nil
}

// 承認待ちの在庫調整を店長が承認し、その時点で在庫に反映する。
// 二重反映は禁止：承認済み・承認不要の調整は拒否する。
// 反映するのはquantityChangeの増減分。quantityAfterは作成時点のスナップショットで、
// 承認までに在庫が動いていれば承認後の在庫とは一致しない。
func (u *StockAdjustmentUsecase) Approve(ctx context.Context, actor Actor, adjustmentID int64) (model.StockAdjustment, error) {
	if actor.ID <= 0 {
		return model.StockAdjustment{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if actor.Role != model.RoleManager {
		return model.StockAdjustment{}, NewHTTPError(http.StatusForbidden, "manager only")
	}
	if adjustmentID <= 0 {
		return model.StockAdjustment{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var approved model.StockAdjustment

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		adj, err := r.Adjustments().FindByID(ctx, adjustmentID)
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		if !adj.RequiresApproval {
			return NewHTTPError(http.StatusBadRequest, "approval not required")
		}
		if adj.IsApproved {
			return NewHTTPError(http.StatusBadRequest, "already approved")
		}

		now := u.clock.Now()
		if err := r.Adjustments().MarkApproved(ctx, adj.ID, actor.ID, now); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				//同時承認で先を越された
				return NewHTTPError(http.StatusConflict, "already approved")
			}
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		//保留していた増減をここで反映する。
		//作成時からの同時変動でマイナスになるなら適用しない（409で返す）。
		ok, err := r.Inventory().AdjustStockIfNonNegative(ctx, adj.ProductID, adj.QuantityChange)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !ok {
			return NewHTTPError(http.StatusConflict, "stock update conflict")
		}

		adj.IsApproved = true
		adj.ApprovedByID = &actor.ID
		adj.ApprovedAt = &now
		approved = adj
		return nil
	})
	if err != nil {
		return model.StockAdjustment{}, err
	}

	u.audit.Publish(audit.Event{
		ActorID:      actor.ID,
		ActorName:    actor.Name,
		Action:       model.AuditActionApproveAdjustment,
		ResourceType: model.AuditResourceAdjustment,
		ResourceID:   approved.ID,
		Details: map[string]interface{}{
			"product_id":      approved.ProductID,
			"quantity_change": approved.QuantityChange,
		},
	})

	return approved, nil
}

type AdjustmentListInput struct {
	ProductID   *int64
	PendingOnly bool
	Limit       int
	Offset      int
}

func (u *StockAdjustmentUsecase) List(ctx context.Context, in AdjustmentListInput) ([]model.StockAdjustment, error) {
	var out []model.StockAdjustment
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		adjs, err := r.Adjustments().List(ctx, repo.AdjustmentListFilter{
			ProductID:   in.ProductID,
			PendingOnly: in.PendingOnly,
			Limit:       in.Limit,
			Offset:      in.Offset,
		})
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		out = adjs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
