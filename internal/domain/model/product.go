package model

import (
	"time"

	"gorm.io/gorm"
)

// 商品マスタ。金額はすべてセント（整数）で持つ。
type Product struct {
	ID      int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Barcode string `gorm:"type:varchar(64);not null;uniqueIndex" json:"barcode"`
	Name    string `gorm:"type:varchar(255);not null" json:"name"`

	//販売価格
	PriceCents int64 `gorm:"not null" json:"price_cents"`

	//仕入原価
	CostCents int64 `gorm:"not null" json:"cost_cents"`

	//在庫数（0未満にならないのが不変条件）
	Stock int64 `gorm:"not null" json:"stock"`

	//発注点（これ以下でlow-stockレポートに出る）
	MinStockLevel int64 `gorm:"not null;default:0" json:"min_stock_level"`

	IsActive  bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time      `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
