package repository

import (
	"context"
	"errors"
	"time"

	"pos/internal/domain/model"
	repo "pos/internal/repository"

	"gorm.io/gorm"
)

type StockAdjustmentGormRepository struct {
	db *gorm.DB
}

func NewStockAdjustmentGormRepository(db *gorm.DB) *StockAdjustmentGormRepository {
	return &StockAdjustmentGormRepository{db: db}
}

func (r *StockAdjustmentGormRepository) Create(ctx context.Context, adj model.StockAdjustment) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&adj).Error; err != nil {
		return 0, err
	}
	return adj.ID, nil
}

func (r *StockAdjustmentGormRepository) FindByID(ctx context.Context, id int64) (model.StockAdjustment, error) {
	var adj model.StockAdjustment
	err := r.db.WithContext(ctx).First(&adj, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.StockAdjustment{}, repo.ErrNotFound
	}
	if err != nil {
		return model.StockAdjustment{}, err
	}
	return adj, nil
}

// 未承認のときだけ承認済みに更新する。
// WHERE is_approved = false の条件付きなので二重承認はここでも弾ける。
func (r *StockAdjustmentGormRepository) MarkApproved(ctx context.Context, id int64, approverID int64, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.StockAdjustment{}).
		Where("id = ? AND is_approved = ?", id, false).
		Updates(map[string]interface{}{
			"is_approved":    true,
			"approved_by_id": approverID,
			"approved_at":    at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *StockAdjustmentGormRepository) List(ctx context.Context, f repo.AdjustmentListFilter) ([]model.StockAdjustment, error) {
	q := r.db.WithContext(ctx).Model(&model.StockAdjustment{})

	if f.ProductID != nil {
		q = q.Where("product_id = ?", *f.ProductID)
	}
	if f.PendingOnly {
		q = q.Where("requires_approval = ? AND is_approved = ?", true, false)
	}

	//新しい順
	q = q.Order("id DESC")

	limit := f.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	q = q.Limit(limit).Offset(f.Offset)

	var adjs []model.StockAdjustment
	if err := q.Find(&adjs).Error; err != nil {
		return nil, err
	}
	return adjs, nil
}
