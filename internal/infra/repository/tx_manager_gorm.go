package repository

import (
	"context"

	repo "pos/internal/repository"

	"gorm.io/gorm"
)

type txReposGorm struct {
	employees   repo.EmployeeRepository
	products    repo.ProductRepository
	inventory   repo.InventoryRepository
	sales       repo.SaleRepository
	saleItems   repo.SaleItemRepository
	returns     repo.ReturnRepository
	adjustments repo.StockAdjustmentRepository
	counts      repo.InventoryCountRepository
	settings    repo.SettingsRepository
}

func (r *txReposGorm) Employees() repo.EmployeeRepository          { return r.employees }
func (r *txReposGorm) Products() repo.ProductRepository            { return r.products }
func (r *txReposGorm) Inventory() repo.InventoryRepository         { return r.inventory }
func (r *txReposGorm) Sales() repo.SaleRepository                  { return r.sales }
func (r *txReposGorm) SaleItems() repo.SaleItemRepository          { return r.saleItems }
func (r *txReposGorm) Returns() repo.ReturnRepository              { return r.returns }
func (r *txReposGorm) Adjustments() repo.StockAdjustmentRepository { return r.adjustments }
func (r *txReposGorm) Counts() repo.InventoryCountRepository       { return r.counts }
func (r *txReposGorm) Settings() repo.SettingsRepository           { return r.settings }

type TxManagerGorm struct {
	db *gorm.DB
}

func NewTxManagerGorm(db *gorm.DB) *TxManagerGorm {
	return &TxManagerGorm{db: db}
}

func (tm *TxManagerGorm) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		//repoはtxを持ったDBで作り直す
		r := &txReposGorm{
			employees:   NewEmployeeGormRepository(tx),
			products:    NewProductGormRepository(tx),
			inventory:   NewInventoryGormRepository(tx),
			sales:       NewSaleGormRepository(tx),
			saleItems:   NewSaleItemGormRepository(tx),
			returns:     NewReturnGormRepository(tx),
			adjustments: NewStockAdjustmentGormRepository(tx),
			counts:      NewInventoryCountGormRepository(tx),
			settings:    NewSettingsGormRepository(tx),
		}
		return fn(r)
	})
}
