package repository

import (
	"context"

	"pos/internal/domain/model"
)

type ReturnRepository interface {
	Create(ctx context.Context, r model.Return) (int64, error)
	CreateItems(ctx context.Context, returnID int64, items []model.ReturnItem) error
	FindByID(ctx context.Context, id int64) (model.Return, error)
	ListItemsByReturnID(ctx context.Context, returnID int64) ([]model.ReturnItem, error)
	List(ctx context.Context, page int, limit int) ([]model.Return, int64, error)

	//このSaleItemに対して過去に返品済みの数量合計
	SumReturnedQuantity(ctx context.Context, originalSaleItemID int64) (int64, error)
}
