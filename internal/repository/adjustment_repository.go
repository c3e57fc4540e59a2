package repository

import (
	"context"
	"time"

	"pos/internal/domain/model"
)

// 在庫調整の絞り込み条件。
type AdjustmentListFilter struct {
	ProductID   *int64
	PendingOnly bool
	Limit       int
	Offset      int
}

type StockAdjustmentRepository interface {
	Create(ctx context.Context, adj model.StockAdjustment) (int64, error)
	FindByID(ctx context.Context, id int64) (model.StockAdjustment, error)

	//承認済みに更新（承認者と時刻を記録）
	MarkApproved(ctx context.Context, id int64, approverID int64, at time.Time) error

	List(ctx context.Context, f AdjustmentListFilter) ([]model.StockAdjustment, error)
}
