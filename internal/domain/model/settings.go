package model

import "time"

// 店舗設定（1行だけのテーブル）。
// 各リクエストの先頭で読み出し、スナップショットとしてusecaseに渡す。
// グローバル変数としては持たない。
type Settings struct {
	ID int64 `gorm:"primaryKey" json:"id"`

	StoreName string `gorm:"type:varchar(255);not null;default:''" json:"store_name"`

	//消費税率（表示用）
	TaxRatePercent float64 `gorm:"not null;default:0" json:"tax_rate_percent"`

	//返品の受付自体を止めるスイッチ
	ReturnsEnabled bool `gorm:"not null;default:true" json:"returns_enabled"`

	//販売からの返品受付日数（0なら無期限）
	ReturnTimeLimitDays int `gorm:"not null;default:30" json:"return_time_limit_days"`

	//金額に関係なく全返品に店長承認を要求する
	RequireReturnApproval bool `gorm:"not null;default:false" json:"require_return_approval"`

	//この金額を超える返品は店長承認が必要
	ReturnApprovalThresholdCents int64 `gorm:"not null;default:5000" json:"return_approval_threshold_cents"`

	//状態goodの返品を在庫に戻す
	RestockReturnedItems bool `gorm:"not null;default:true" json:"restock_returned_items"`

	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// 設定行のID（常に1行だけ使う）
const SettingsRowID int64 = 1
