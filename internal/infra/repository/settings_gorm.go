package repository

import (
	"context"
	"errors"

	"pos/internal/domain/model"

	"gorm.io/gorm"
)

type SettingsGormRepository struct {
	db *gorm.DB
}

func NewSettingsGormRepository(db *gorm.DB) *SettingsGormRepository {
	return &SettingsGormRepository{db: db}
}

// 設定スナップショットを取得。行がなければデフォルト値で作る。
func (r *SettingsGormRepository) Get(ctx context.Context) (model.Settings, error) {
	var s model.Settings
	err := r.db.WithContext(ctx).First(&s, model.SettingsRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s = model.Settings{
			ID:                           model.SettingsRowID,
			ReturnsEnabled:               true,
			ReturnTimeLimitDays:          30,
			ReturnApprovalThresholdCents: 5000,
			RestockReturnedItems:         true,
		}
		if err := r.db.WithContext(ctx).Create(&s).Error; err != nil {
			return model.Settings{}, err
		}
		return s, nil
	}
	if err != nil {
		return model.Settings{}, err
	}
	return s, nil
}

func (r *SettingsGormRepository) Update(ctx context.Context, s model.Settings) error {
	s.ID = model.SettingsRowID
	res := r.db.WithContext(ctx).Model(&model.Settings{}).Where("id = ?", s.ID).Updates(map[string]interface{}{
		"store_name":                      s.StoreName,
		"tax_rate_percent":                s.TaxRatePercent,
		"returns_enabled":                 s.ReturnsEnabled,
		"return_time_limit_days":          s.ReturnTimeLimitDays,
		"require_return_approval":         s.RequireReturnApproval,
		"return_approval_threshold_cents": s.ReturnApprovalThresholdCents,
		"restock_returned_items":          s.RestockReturnedItems,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		//行がまだ無ければ作る
		return r.db.WithContext(ctx).Create(&s).Error
	}
	return nil
}
