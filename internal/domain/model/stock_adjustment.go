package model

import "time"

type AdjustmentType string

const (
	AdjustmentTypeDamage     AdjustmentType = "DAMAGE"
	AdjustmentTypeTheft      AdjustmentType = "THEFT"
	AdjustmentTypeExpired    AdjustmentType = "EXPIRED"
	AdjustmentTypeFound      AdjustmentType = "FOUND"
	AdjustmentTypeCorrection AdjustmentType = "CORRECTION"
	AdjustmentTypeReturn     AdjustmentType = "RETURN"
)

func (t AdjustmentType) Valid() bool {
	switch t {
	case AdjustmentTypeDamage, AdjustmentTypeTheft, AdjustmentTypeExpired,
		AdjustmentTypeFound, AdjustmentTypeCorrection, AdjustmentTypeReturn:
		return true
	}
	return false
}

// 在庫調整。
// 承認が必要な場合、在庫への反映は承認時まで保留する。
// 不変条件：QuantityAfter = QuantityBefore + QuantityChange
type StockAdjustment struct {
	ID         int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID  int64 `gorm:"not null;index" json:"product_id"`
	EmployeeID int64 `gorm:"not null;index" json:"employee_id"`

	Type AdjustmentType `gorm:"type:varchar(20);not null;index" json:"type"`

	//符号付きの増減
	QuantityChange int64 `gorm:"not null" json:"quantity_change"`

	//調整作成時点のスナップショット
	QuantityBefore int64 `gorm:"not null" json:"quantity_before"`
	QuantityAfter  int64 `gorm:"not null" json:"quantity_after"`

	//原価影響額 = QuantityChange × 商品原価
	CostImpactCents int64 `gorm:"not null" json:"cost_impact_cents"`

	Reason          string `gorm:"type:varchar(255);not null" json:"reason"`
	Notes           string `gorm:"type:text" json:"notes"`
	ReferenceNumber string `gorm:"type:varchar(64)" json:"reference_number"`

	RequiresApproval bool `gorm:"not null" json:"requires_approval"`
	IsApproved       bool `gorm:"not null" json:"is_approved"`

	ApprovedByID *int64     `gorm:"index" json:"approved_by_id"`
	ApprovedAt   *time.Time `json:"approved_at"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
