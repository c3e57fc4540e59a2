package model

import "time"

type CountStatus string

const (
	CountStatusInProgress CountStatus = "IN_PROGRESS"
	CountStatusCompleted  CountStatus = "COMPLETED"
	CountStatusCancelled  CountStatus = "CANCELLED"
)

// 棚卸セッション。
// IN_PROGRESS → COMPLETED | CANCELLED（終端）。同時にIN_PROGRESSは1つだけ。
type InventoryCount struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//棚卸番号（CNT-yyyymmdd-8hex）
	CountNumber string `gorm:"type:varchar(32);not null;uniqueIndex" json:"count_number"`

	Status CountStatus `gorm:"type:varchar(20);not null;index" json:"status"`

	StartedByID   int64  `gorm:"not null;index" json:"started_by_id"`
	CompletedByID *int64 `gorm:"index" json:"completed_by_id"`
	Notes         string `gorm:"type:text" json:"notes"`

	//集計（明細追加のたびに更新する）
	TotalItemsCounted   int64 `gorm:"not null;default:0" json:"total_items_counted"`
	TotalDiscrepancies  int64 `gorm:"not null;default:0" json:"total_discrepancies"`
	TotalShrinkageCents int64 `gorm:"not null;default:0" json:"total_shrinkage_cents"`
	TotalOverageCents   int64 `gorm:"not null;default:0" json:"total_overage_cents"`
	NetVarianceCents    int64 `gorm:"not null;default:0" json:"net_variance_cents"`

	StartedAt   time.Time  `gorm:"not null;autoCreateTime" json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

// 棚卸明細。variance = counted − system。
type InventoryCountItem struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	CountID   int64 `gorm:"not null;index" json:"count_id"`
	ProductID int64 `gorm:"not null;index" json:"product_id"`

	ProductNameSnapshot string `gorm:"type:varchar(255);not null" json:"product_name_snapshot"`

	SystemQuantity  int64 `gorm:"not null" json:"system_quantity"`
	CountedQuantity int64 `gorm:"not null" json:"counted_quantity"`

	Variance int64 `gorm:"not null" json:"variance"`

	//差異金額 = Variance × 商品原価
	VarianceValueCents int64 `gorm:"not null" json:"variance_value_cents"`

	CountedAt time.Time `gorm:"not null;autoCreateTime" json:"counted_at"`
}
