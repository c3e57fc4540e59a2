package repository

import (
	"context"

	"pos/internal/domain/model"
)

// スタッフの永続化の約束。
type EmployeeRepository interface {
	FindByID(ctx context.Context, id int64) (model.Employee, error)

	//PIN照合用。roleの有効なスタッフだけ返す
	ListActiveByRole(ctx context.Context, role model.Role) ([]model.Employee, error)

	List(ctx context.Context) ([]model.Employee, error)
	Create(ctx context.Context, e model.Employee) (model.Employee, error)
	Update(ctx context.Context, e model.Employee) error
	SetActive(ctx context.Context, id int64, isActive bool) error
}
