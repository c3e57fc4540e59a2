package cache

import (
	"context"
	"time"

	"pos/internal/domain/model"
)

// low-stockレポートのキャッシュの約束。
// レポートは多少古くても困らないので短いTTLで持つ。
type LowStockCache interface {
	Get(ctx context.Context) ([]model.Product, bool, error)
	Set(ctx context.Context, items []model.Product, ttl time.Duration) error
}

// Redisなしで動かすときのno-op実装。
type NoopLowStockCache struct{}

func (NoopLowStockCache) Get(_ context.Context) ([]model.Product, bool, error) {
	return nil, false, nil
}

func (NoopLowStockCache) Set(_ context.Context, _ []model.Product, _ time.Duration) error {
	return nil
}
