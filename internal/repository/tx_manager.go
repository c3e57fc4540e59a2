package repository

import "context"

// トランザクション内で使う約束
type TxRepos interface {
	Employees() EmployeeRepository
	Products() ProductRepository
	Inventory() InventoryRepository
	Sales() SaleRepository
	SaleItems() SaleItemRepository
	Returns() ReturnRepository
	Adjustments() StockAdjustmentRepository
	Counts() InventoryCountRepository
	Settings() SettingsRepository
}

// UsecaseからTxの開始/commit/rollbackを隠す。
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
