package repository

import "context"

// 在庫数の更新だけを約束。
type InventoryRepository interface {
	// 結果が0未満にならないときだけ増減する。
	// 条件を満たさなければ何も書かずfalseを返す。
	AdjustStockIfNonNegative(ctx context.Context, productID int64, delta int64) (bool, error)

	// 在庫の現在値を設定（棚卸確定用）
	SetStock(ctx context.Context, productID int64, newStock int64) error
}
