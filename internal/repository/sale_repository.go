package repository

import (
	"context"

	"pos/internal/domain/model"
)

type SaleRepository interface {
	Create(ctx context.Context, s model.Sale) (int64, error)
	FindByID(ctx context.Context, id int64) (model.Sale, error)
	FindByIdempotencyKey(ctx context.Context, key string) (model.Sale, bool, error)
	List(ctx context.Context, page int, limit int) ([]model.Sale, int64, error)
}

type SaleItemRepository interface {
	CreateBulk(ctx context.Context, saleID int64, items []model.SaleItem) error
	ListBySaleID(ctx context.Context, saleID int64) ([]model.SaleItem, error)
	FindByID(ctx context.Context, id int64) (model.SaleItem, error)

	// 行ロック付きで取得（FOR UPDATE）。
	// 返品数量の検証中に同じ明細への同時返品を直列化する。
	FindByIDForUpdate(ctx context.Context, id int64) (model.SaleItem, error)
}
