package model

import "time"

// 完了した販売の確定記録。作成後は変更しない。
type Sale struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//レシート番号（SALE-yyyymmdd-8hex）
	SaleNumber string `gorm:"type:varchar(32);not null;uniqueIndex" json:"sale_number"`

	EmployeeID    int64  `gorm:"not null;index" json:"employee_id"`
	TotalCents    int64  `gorm:"not null" json:"total_cents"`
	PaymentMethod string `gorm:"type:varchar(20);not null;default:'cash'" json:"payment_method"`

	//同一キー再送で同じ販売を返す（端末の再送対策）
	IdempotencyKey string `gorm:"type:varchar(255);not null;uniqueIndex" json:"-"`

	//リクエスト本文のSHA-256。同じキーで本文が違う再送を409で弾くための照合用
	RequestHash string `gorm:"type:varchar(64);not null;default:''" json:"-"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
}
