package repository

import (
	"context"
	"errors"

	"pos/internal/domain/model"
	repo "pos/internal/repository"

	"gorm.io/gorm"
)

type ReturnGormRepository struct {
	db *gorm.DB
}

func NewReturnGormRepository(db *gorm.DB) *ReturnGormRepository {
	return &ReturnGormRepository{db: db}
}

func (r *ReturnGormRepository) Create(ctx context.Context, ret model.Return) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&ret).Error; err != nil {
		return 0, err
	}
	return ret.ID, nil
}

func (r *ReturnGormRepository) CreateItems(ctx context.Context, returnID int64, items []model.ReturnItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].ReturnID = returnID
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *ReturnGormRepository) FindByID(ctx context.Context, id int64) (model.Return, error) {
	var ret model.Return
	err := r.db.WithContext(ctx).First(&ret, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Return{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Return{}, err
	}
	return ret, nil
}

func (r *ReturnGormRepository) ListItemsByReturnID(ctx context.Context, returnID int64) ([]model.ReturnItem, error) {
	var items []model.ReturnItem
	err := r.db.WithContext(ctx).
		Where("return_id = ?", returnID).
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ReturnGormRepository) List(ctx context.Context, page int, limit int) ([]model.Return, int64, error) {
	var rets []model.Return
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.Return{})
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := tx.Order("created_at desc").Order("id desc").
		Offset(offset).Limit(limit).
		Find(&rets).Error
	if err != nil {
		return nil, 0, err
	}
	return rets, total, nil
}

// このSaleItemに対して過去に返品済みの数量合計。
// 呼び出し側がSaleItem行をFOR UPDATEでロックしてから使うこと。
func (r *ReturnGormRepository) SumReturnedQuantity(ctx context.Context, originalSaleItemID int64) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).
		Model(&model.ReturnItem{}).
		Where("original_sale_item_id = ?", originalSaleItemID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&sum).Error
	if err != nil {
		return 0, err
	}
	return sum, nil
}
