package usecase

import (
	"context"
	"errors"
	"net/http"
	"time"

	"pos/internal/audit"
	"pos/internal/domain/model"
	"pos/internal/repository"
	"pos/internal/validator"
)

// JWTを発行する約束
type AccessTokenIssuer interface {
	Issue(employeeID int64, name string, role model.Role, now time.Time) (token string, expiresAt time.Time, err error)
}

type LoginInput struct {
	EmployeeID   int64
	PIN          string
	SelectedRole string
}

type LoginOutput struct {
	Employee    model.Employee `json:"employee"`
	AccessToken string         `json:"access_token"`
	ExpiresAt   time.Time      `json:"expires_at"`
}

type AuthUsecase struct {
	employees repository.EmployeeRepository
	verifier  PINVerifier
	issuer    AccessTokenIssuer
	clock     Clock
	audit     audit.Publisher
}

func NewAuthUsecase(
	employees repository.EmployeeRepository,
	verifier PINVerifier,
	issuer AccessTokenIssuer,
	clock Clock,
	auditPub audit.Publisher,
) *AuthUsecase {
	return &AuthUsecase{
		employees: employees,
		verifier:  verifier,
		issuer:    issuer,
		clock:     clock,
		audit:     auditPub,
	}
}

// ログイン処理を実行する。
// 「スタッフが存在しない／停止中／PIN不一致／ロール不一致」は
// すべて同じメッセージで返す（どれで落ちたか外に見せない）。
func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (LoginOutput, error) {
	if in.EmployeeID <= 0 {
		return LoginOutput{}, NewHTTPError(http.StatusBadRequest, "employee_id required")
	}
	if err := validator.ValidatePIN(in.PIN); err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if in.SelectedRole != "" {
		if err := validator.ValidateRole(in.SelectedRole); err != nil {
			return LoginOutput{}, NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}

	emp, err := u.employees.FindByID(ctx, in.EmployeeID)
	if errors.Is(err, repository.ErrNotFound) {
		return LoginOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}
	if err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if !emp.IsActive {
		return LoginOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	//PIN照合
	if !u.verifier.Verify(in.PIN, emp.PINHash) {
		return LoginOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	//選択ロールは実ロールと完全一致のみ許可
	if in.SelectedRole != "" && model.Role(in.SelectedRole) != emp.Role {
		return LoginOutput{}, NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	}

	now := u.clock.Now()
	token, expiresAt, err := u.issuer.Issue(emp.ID, emp.Name, emp.Role, now)
	if err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	u.audit.Publish(audit.Event{
		ActorID:      emp.ID,
		ActorName:    emp.Name,
		Action:       model.AuditActionLogin,
		ResourceType: model.AuditResourceEmployee,
		ResourceID:   emp.ID,
		Details:      map[string]interface{}{"role": string(emp.Role)},
	})

	return LoginOutput{
		Employee:    emp,
		AccessToken: token,
		ExpiresAt:   expiresAt,
	}, nil
}
