package repository

import (
	"context"
	"errors"

	"pos/internal/domain/model"
	repo "pos/internal/repository"

	"gorm.io/gorm"
)

type EmployeeGormRepository struct {
	db *gorm.DB
}

// DI
func NewEmployeeGormRepository(db *gorm.DB) *EmployeeGormRepository {
	return &EmployeeGormRepository{db: db}
}

func (r *EmployeeGormRepository) FindByID(ctx context.Context, id int64) (model.Employee, error) {
	var e model.Employee
	err := r.db.WithContext(ctx).First(&e, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Employee{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Employee{}, err
	}
	return e, nil
}

// PIN照合に使う。is_active=trueの該当ロールだけ。
func (r *EmployeeGormRepository) ListActiveByRole(ctx context.Context, role model.Role) ([]model.Employee, error) {
	var es []model.Employee
	err := r.db.WithContext(ctx).
		Where("role = ? AND is_active = ?", role, true).
		Order("id asc").
		Find(&es).Error
	if err != nil {
		return nil, err
	}
	return es, nil
}

func (r *EmployeeGormRepository) List(ctx context.Context) ([]model.Employee, error) {
	var es []model.Employee
	if err := r.db.WithContext(ctx).Order("id asc").Find(&es).Error; err != nil {
		return nil, err
	}
	return es, nil
}

func (r *EmployeeGormRepository) Create(ctx context.Context, e model.Employee) (model.Employee, error) {
	if err := r.db.WithContext(ctx).Create(&e).Error; err != nil {
		return model.Employee{}, err
	}
	return e, nil
}

func (r *EmployeeGormRepository) Update(ctx context.Context, e model.Employee) error {
	res := r.db.WithContext(ctx).Model(&model.Employee{}).Where("id = ?", e.ID).Updates(map[string]interface{}{
		"name":      e.Name,
		"role":      e.Role,
		"pin_hash":  e.PINHash,
		"is_active": e.IsActive,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *EmployeeGormRepository) SetActive(ctx context.Context, id int64, isActive bool) error {
	res := r.db.WithContext(ctx).Model(&model.Employee{}).
		Where("id = ?", id).
		Update("is_active", isActive)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
