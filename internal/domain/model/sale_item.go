package model

import "time"

// 販売明細。
// 商品名・バーコード・単価は販売時点のスナップショットを必ず保存。
// あとからProductが変わっても履歴は変わらない。
type SaleItem struct {
	ID        int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	SaleID    int64 `gorm:"not null;index" json:"sale_id"`
	ProductID int64 `gorm:"not null;index" json:"product_id"`

	ProductNameSnapshot string `gorm:"type:varchar(255);not null" json:"product_name_snapshot"`
	BarcodeSnapshot     string `gorm:"type:varchar(64);not null" json:"barcode_snapshot"`
	UnitPriceCents      int64  `gorm:"not null" json:"unit_price_cents"`

	Quantity  int64     `gorm:"not null" json:"quantity"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
