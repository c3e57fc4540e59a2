package usecase

import (
	"context"
	"net/http"
	"time"

	"pos/internal/domain/model"
	"pos/internal/repository"
)

type AuditLogUsecase struct {
	logs repository.AuditLogRepository
}

func NewAuditLogUsecase(logs repository.AuditLogRepository) *AuditLogUsecase {
	return &AuditLogUsecase{logs: logs}
}

type ListAuditLogsInput struct {
	ActorEmployeeID *int64
	Action          string
	ResourceType    string
	ResourceID      *int64
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
	Limit           int
	Offset          int
}

// 監査ログの閲覧（店長のみ）。
func (u *AuditLogUsecase) List(ctx context.Context, actor Actor, in ListAuditLogsInput) ([]model.AuditLog, error) {
	if actor.Role != model.RoleManager {
		return nil, NewHTTPError(http.StatusForbidden, "manager only")
	}
	if in.Limit < 1 || in.Limit > 200 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if in.Offset < 0 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid offset")
	}

	filter := repository.AuditLogFilter{
		ActorEmployeeID: in.ActorEmployeeID,
		ResourceID:      in.ResourceID,
		CreatedFrom:     in.CreatedFrom,
		CreatedTo:       in.CreatedTo,
		Limit:           in.Limit,
		Offset:          in.Offset,
	}
	if in.Action != "" {
		a := model.AuditAction(in.Action)
		filter.Action = &a
	}
	if in.ResourceType != "" {
		rt := model.AuditResourceType(in.ResourceType)
		filter.ResourceType = &rt
	}

	logs, err := u.logs.List(ctx, filter)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return logs, nil
}
