package usecase

import (
	"context"
	"net/http"
	"strings"

	"pos/internal/audit"
	"pos/internal/domain/model"
	"pos/internal/repository"
)

type SettingsUsecase struct {
	settings repository.SettingsRepository
	audit    audit.Publisher
}

func NewSettingsUsecase(settings repository.SettingsRepository, auditPub audit.Publisher) *SettingsUsecase {
	return &SettingsUsecase{settings: settings, audit: auditPub}
}

func (u *SettingsUsecase) Get(ctx context.Context) (model.Settings, error) {
	s, err := u.settings.Get(ctx)
	if err != nil {
		return model.Settings{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return s, nil
}

type UpdateSettingsInput struct {
	StoreName                    string
	TaxRatePercent               float64
	ReturnsEnabled               bool
	ReturnTimeLimitDays          int
	RequireReturnApproval        bool
	ReturnApprovalThresholdCents int64
	RestockReturnedItems         bool
}

// 店舗設定の更新（店長のみ）。
func (u *SettingsUsecase) Update(ctx context.Context, actor Actor, in UpdateSettingsInput) (model.Settings, error) {
	if actor.Role != model.RoleManager {
		return model.Settings{}, NewHTTPError(http.StatusForbidden, "manager only")
	}
	if strings.TrimSpace(in.StoreName) == "" {
		return model.Settings{}, NewHTTPError(http.StatusBadRequest, "store_name required")
	}
	if in.TaxRatePercent < 0 || in.TaxRatePercent > 100 {
		return model.Settings{}, NewHTTPError(http.StatusBadRequest, "tax_rate_percent must be between 0 and 100")
	}
	if in.ReturnTimeLimitDays < 0 {
		return model.Settings{}, NewHTTPError(http.StatusBadRequest, "return_time_limit_days must be >= 0")
	}
	if in.ReturnApprovalThresholdCents < 0 {
		return model.Settings{}, NewHTTPError(http.StatusBadRequest, "return_approval_threshold_cents must be >= 0")
	}

	s := model.Settings{
		ID:                           model.SettingsRowID,
		StoreName:                    strings.TrimSpace(in.StoreName),
		TaxRatePercent:               in.TaxRatePercent,
		ReturnsEnabled:               in.ReturnsEnabled,
		ReturnTimeLimitDays:          in.ReturnTimeLimitDays,
		RequireReturnApproval:        in.RequireReturnApproval,
		ReturnApprovalThresholdCents: in.ReturnApprovalThresholdCents,
		RestockReturnedItems:         in.RestockReturnedItems,
	}
	if err := u.settings.Update(ctx, s); err != nil {
		return model.Settings{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	u.audit.Publish(audit.Event{
		ActorID:      actor.ID,
		ActorName:    actor.Name,
		Action:       model.AuditActionUpdateSettings,
		ResourceType: model.AuditResourceSettings,
		ResourceID:   model.SettingsRowID,
		Details: map[string]interface{}{
			"returns_enabled":        s.ReturnsEnabled,
			"return_time_limit_days": s.ReturnTimeLimitDays,
		},
	})

	return s, nil
}
