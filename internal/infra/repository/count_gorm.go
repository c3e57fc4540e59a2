package repository

import (
	"context"
	"errors"

	"pos/internal/domain/model"
	repo "pos/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InventoryCountGormRepository struct {
	db *gorm.DB
}

func NewInventoryCountGormRepository(db *gorm.DB) *InventoryCountGormRepository {
	return &InventoryCountGormRepository{db: db}
}

// IN_PROGRESS行の部分一意インデックスがあるため、
// 同時に2つ目の棚卸を開始しようとした側はErrConflictになる。
func (r *InventoryCountGormRepository) Create(ctx context.Context, c model.InventoryCount) (int64, error) {
	if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return 0, repo.ErrConflict
		}
		return 0, err
	}
	return c.ID, nil
}

func (r *InventoryCountGormRepository) FindByID(ctx context.Context, id int64) (model.InventoryCount, error) {
	var c model.InventoryCount
	err := r.db.WithContext(ctx).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.InventoryCount{}, repo.ErrNotFound
	}
	if err != nil {
		return model.InventoryCount{}, err
	}
	return c, nil
}

// 棚卸行をFOR UPDATEで取得する。
// 明細追加・確定・中止はこの行ロックの下でstatus検査と更新を行う。
func (r *InventoryCountGormRepository) FindByIDForUpdate(ctx context.Context, id int64) (model.InventoryCount, error) {
	var c model.InventoryCount
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.InventoryCount{}, repo.ErrNotFound
	}
	if err != nil {
		return model.InventoryCount{}, err
	}
	return c, nil
}

// 進行中の棚卸を返す。ロックは取らない（先客の表示用）。
// 開始の同時実行はIN_PROGRESSの部分一意インデックスで弾く。
func (r *InventoryCountGormRepository) FindInProgress(ctx context.Context) (model.InventoryCount, bool, error) {
	var c model.InventoryCount
	err := r.db.WithContext(ctx).
		Where("status = ?", model.CountStatusInProgress).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.InventoryCount{}, false, nil
	}
	if err != nil {
		return model.InventoryCount{}, false, err
	}
	return c, true, nil
}

func (r *InventoryCountGormRepository) AddItem(ctx context.Context, item model.InventoryCountItem) error {
	return r.db.WithContext(ctx).Create(&item).Error
}

func (r *InventoryCountGormRepository) ListItems(ctx context.Context, countID int64) ([]model.InventoryCountItem, error) {
	var items []model.InventoryCountItem
	err := r.db.WithContext(ctx).
		Where("count_id = ?", countID).
		Order("id asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// 集計列・ステータス・完了情報をまとめて更新。
// IN_PROGRESSの行だけが対象：確定済み・中止済みへの上書きはErrNotFoundで弾く。
func (r *InventoryCountGormRepository) Update(ctx context.Context, c model.InventoryCount) error {
	res := r.db.WithContext(ctx).Model(&model.InventoryCount{}).
		Where("id = ? AND status = ?", c.ID, model.CountStatusInProgress).
		Updates(map[string]interface{}{
			"status":                c.Status,
			"completed_by_id":       c.CompletedByID,
			"notes":                 c.Notes,
			"total_items_counted":   c.TotalItemsCounted,
			"total_discrepancies":   c.TotalDiscrepancies,
			"total_shrinkage_cents": c.TotalShrinkageCents,
			"total_overage_cents":   c.TotalOverageCents,
			"net_variance_cents":    c.NetVarianceCents,
			"completed_at":          c.CompletedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *InventoryCountGormRepository) List(ctx context.Context, page int, limit int) ([]model.InventoryCount, int64, error) {
	var counts []model.InventoryCount
	var total int64

	tx := r.db.WithContext(ctx).Model(&model.InventoryCount{})
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := tx.Order("started_at desc").Order("id desc").
		Offset(offset).Limit(limit).
		Find(&counts).Error
	if err != nil {
		return nil, 0, err
	}
	return counts, total, nil
}
