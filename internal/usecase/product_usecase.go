package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"pos/internal/cache"
	"pos/internal/domain/model"
	repo "pos/internal/repository"
	"pos/internal/validator"
)

// low-stockレポートのキャッシュ保持時間
const lowStockCacheTTL = 60 * time.Second

type ProductUsecase struct {
	productRepo   repo.ProductRepository
	lowStockCache cache.LowStockCache
}

// DI
func NewProductUsecase(productRepo repo.ProductRepository, lowStockCache cache.LowStockCache) *ProductUsecase {
	return &ProductUsecase{
		productRepo:   productRepo,
		lowStockCache: lowStockCache,
	}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Page       int
	Limit      int
	Q          string
	ActiveOnly bool
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

func (u *ProductUsecase) ListProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if len(in.Q) > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "q too long")
	}

	items, total, err := u.productRepo.List(ctx, repo.ProductListQuery{
		Page:       in.Page,
		Limit:      in.Limit,
		Q:          strings.TrimSpace(in.Q),
		ActiveOnly: in.ActiveOnly,
	})
	if err != nil {
		return ProductListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return ProductListOutput{
		Items: items,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

func (u *ProductUsecase) GetProduct(ctx context.Context, productID int64) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return p, nil
}

// レジのスキャン用。バーコードで1件取得。
func (u *ProductUsecase) GetProductByBarcode(ctx context.Context, barcode string) (model.Product, error) {
	if strings.TrimSpace(barcode) == "" {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "barcode required")
	}

	p, err := u.productRepo.FindByBarcode(ctx, strings.TrimSpace(barcode))
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return p, nil
}

type ProductInput struct {
	Barcode       string
	Name          string
	PriceCents    int64
	CostCents     int64
	Stock         int64
	MinStockLevel int64
	IsActive      bool
}

func (u *ProductUsecase) CreateProduct(ctx context.Context, actor Actor, in ProductInput) (model.Product, error) {
	if actor.ID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := validator.ValidateProduct(validator.ProductInput{
		Barcode:       in.Barcode,
		Name:          in.Name,
		PriceCents:    in.PriceCents,
		CostCents:     in.CostCents,
		Stock:         in.Stock,
		MinStockLevel: in.MinStockLevel,
	}); err != nil {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, err.Error())
	}

	//バーコードの重複チェック（unique indexが最後の砦）
	if _, err := u.productRepo.FindByBarcode(ctx, strings.TrimSpace(in.Barcode)); err == nil {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "barcode already exists")
	} else if !errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	p, err := u.productRepo.Create(ctx, model.Product{
		Barcode:       strings.TrimSpace(in.Barcode),
		Name:          strings.TrimSpace(in.Name),
		PriceCents:    in.PriceCents,
		CostCents:     in.CostCents,
		Stock:         in.Stock,
		MinStockLevel: in.MinStockLevel,
		IsActive:      in.IsActive,
	})
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return p, nil
}

func (u *ProductUsecase) UpdateProduct(ctx context.Context, actor Actor, productID int64, in ProductInput) error {
	if actor.ID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if err := validator.ValidateProduct(validator.ProductInput{
		Barcode:       in.Barcode,
		Name:          in.Name,
		PriceCents:    in.PriceCents,
		CostCents:     in.CostCents,
		Stock:         0, //在庫はこのAPIでは触らない（調整・棚卸で動かす）
		MinStockLevel: in.MinStockLevel,
	}); err != nil {
		return NewHTTPError(http.StatusBadRequest, err.Error())
	}

	err := u.productRepo.Update(ctx, model.Product{
		ID:            productID,
		Barcode:       strings.TrimSpace(in.Barcode),
		Name:          strings.TrimSpace(in.Name),
		PriceCents:    in.PriceCents,
		CostCents:     in.CostCents,
		MinStockLevel: in.MinStockLevel,
		IsActive:      in.IsActive,
	})
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// 商品削除（ソフトデリート）。
// 販売明細はスナップショット列を持つので、削除しても履歴表示は壊れない。
func (u *ProductUsecase) DeleteProduct(ctx context.Context, actor Actor, productID int64) error {
	if actor.ID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	err := u.productRepo.SoftDelete(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

// 発注点を割っている商品のレポート。
// 多少古くてもよいのでキャッシュ越しに返す（キャッシュ障害は無視してDBに行く）。
func (u *ProductUsecase) LowStockReport(ctx context.Context) ([]model.Product, error) {
	if items, hit, err := u.lowStockCache.Get(ctx); err == nil && hit {
		return items, nil
	}

	items, err := u.productRepo.ListLowStock(ctx)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//キャッシュ書き込みの失敗は握りつぶす
	_ = u.lowStockCache.Set(ctx, items, lowStockCacheTTL)

	return items, nil
}
