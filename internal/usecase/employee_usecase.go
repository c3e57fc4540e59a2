package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"pos/internal/domain/model"
	"pos/internal/repository"
	"pos/internal/validator"
)

type EmployeeUsecase struct {
	employees repository.EmployeeRepository
	hasher    PINHasher
}

func NewEmployeeUsecase(employees repository.EmployeeRepository, hasher PINHasher) *EmployeeUsecase {
	return &EmployeeUsecase{employees: employees, hasher: hasher}
}

type CreateEmployeeInput struct {
	Name string
	Role string
	PIN  string
}

// スタッフ登録（店長のみ）。PINはbcryptハッシュで保存する。
func (u *EmployeeUsecase) Create(ctx context.Context, actor Actor, in CreateEmployeeInput) (model.Employee, error) {
	if actor.Role != model.RoleManager {
		return model.Employee{}, NewHTTPError(http.StatusForbidden, "manager only")
	}
	if strings.TrimSpace(in.Name) == "" {
		return model.Employee{}, NewHTTPError(http.StatusBadRequest, "name required")
	}
	if err := validator.ValidateRole(in.Role); err != nil {
		return model.Employee{}, NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := validator.ValidatePIN(in.PIN); err != nil {
		return model.Employee{}, NewHTTPError(http.StatusBadRequest, err.Error())
	}

	hash, err := u.hasher.Hash(in.PIN)
	if err != nil {
		return model.Employee{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	emp, err := u.employees.Create(ctx, model.Employee{
		Name:     strings.TrimSpace(in.Name),
		Role:     model.Role(in.Role),
		PINHash:  hash,
		IsActive: true,
	})
	if err != nil {
		return model.Employee{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return emp, nil
}

type UpdateEmployeeInput struct {
	Name string
	Role string

	//空なら据え置き
	PIN string

	IsActive bool
}

func (u *EmployeeUsecase) Update(ctx context.Context, actor Actor, employeeID int64, in UpdateEmployeeInput) (model.Employee, error) {
	if actor.Role != model.RoleManager {
		return model.Employee{}, NewHTTPError(http.StatusForbidden, "manager only")
	}
	if employeeID <= 0 {
		return model.Employee{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if strings.TrimSpace(in.Name) == "" {
		return model.Employee{}, NewHTTPError(http.StatusBadRequest, "name required")
	}
	if err := validator.ValidateRole(in.Role); err != nil {
		return model.Employee{}, NewHTTPError(http.StatusBadRequest, err.Error())
	}

	emp, err := u.employees.FindByID(ctx, employeeID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Employee{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Employee{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	emp.Name = strings.TrimSpace(in.Name)
	emp.Role = model.Role(in.Role)
	emp.IsActive = in.IsActive

	if in.PIN != "" {
		if err := validator.ValidatePIN(in.PIN); err != nil {
			return model.Employee{}, NewHTTPError(http.StatusBadRequest, err.Error())
		}
		hash, err := u.hasher.Hash(in.PIN)
		if err != nil {
			return model.Employee{}, NewHTTPError(http.StatusInternalServerError, "internal error")
		}
		emp.PINHash = hash
	}

	if err := u.employees.Update(ctx, emp); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Employee{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return model.Employee{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return emp, nil
}

func (u *EmployeeUsecase) Get(ctx context.Context, actor Actor, employeeID int64) (model.Employee, error) {
	if actor.Role != model.RoleManager && actor.ID != employeeID {
		return model.Employee{}, NewHTTPError(http.StatusForbidden, "forbidden")
	}
	if employeeID <= 0 {
		return model.Employee{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	emp, err := u.employees.FindByID(ctx, employeeID)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Employee{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Employee{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return emp, nil
}

func (u *EmployeeUsecase) List(ctx context.Context, actor Actor) ([]model.Employee, error) {
	if actor.Role != model.RoleManager {
		return nil, NewHTTPError(http.StatusForbidden, "manager only")
	}

	emps, err := u.employees.List(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return emps, nil
}

// 退職者は消さずに無効化する（過去の販売・監査ログが参照している）。
func (u *EmployeeUsecase) Deactivate(ctx context.Context, actor Actor, employeeID int64) error {
	if actor.Role != model.RoleManager {
		return NewHTTPError(http.StatusForbidden, "manager only")
	}
	if employeeID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if employeeID == actor.ID {
		return NewHTTPError(http.StatusBadRequest, "cannot deactivate yourself")
	}

	err := u.employees.SetActive(ctx, employeeID, false)
	if errors.Is(err, repository.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
