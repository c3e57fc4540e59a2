package model

import "time"

// 返品ヘッダ。
type Return struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//返品番号（RET-yyyymmdd-8hex）
	ReturnNumber string `gorm:"type:varchar(32);not null;uniqueIndex" json:"return_number"`

	OriginalSaleID int64 `gorm:"not null;index" json:"original_sale_id"`
	EmployeeID     int64 `gorm:"not null;index" json:"employee_id"`

	RefundTotalCents int64 `gorm:"not null" json:"refund_total_cents"`

	//承認した店長（承認不要ならnil。名前はスナップショット）
	ApprovedByID   *int64 `gorm:"index" json:"approved_by_id"`
	ApprovedByName string `gorm:"type:varchar(255)" json:"approved_by_name"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}

type ReturnCondition string

const (
	ReturnConditionGood      ReturnCondition = "good"
	ReturnConditionDamaged   ReturnCondition = "damaged"
	ReturnConditionDefective ReturnCondition = "defective"
)

// 返品明細。元の販売明細を参照する。
// 不変条件：同じSaleItemに対するQuantityの合計は販売数量を超えない。
type ReturnItem struct {
	ID       int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	ReturnID int64 `gorm:"not null;index" json:"return_id"`

	OriginalSaleItemID int64 `gorm:"not null;index" json:"original_sale_item_id"`
	ProductID          int64 `gorm:"not null;index" json:"product_id"`

	Quantity       int64           `gorm:"not null" json:"quantity"`
	LineTotalCents int64           `gorm:"not null" json:"line_total_cents"`
	Condition      ReturnCondition `gorm:"type:varchar(20);not null" json:"condition"`
	Reason         string          `gorm:"type:varchar(255);not null" json:"reason"`

	//この明細分を在庫に戻したか
	RestockedToInventory bool `gorm:"not null;default:false" json:"restocked_to_inventory"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
