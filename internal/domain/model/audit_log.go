package model

import "time"

// 操作の種類（売上作成、返品、在庫調整など）。
type AuditAction string

const (
	AuditActionLogin             AuditAction = "LOGIN"
	AuditActionCreateSale        AuditAction = "CREATE_SALE"
	AuditActionProcessReturn     AuditAction = "PROCESS_RETURN"
	AuditActionCreateAdjustment  AuditAction = "CREATE_ADJUSTMENT"
	AuditActionApproveAdjustment AuditAction = "APPROVE_ADJUSTMENT"
	AuditActionStartCount        AuditAction = "START_COUNT"
	AuditActionCompleteCount     AuditAction = "COMPLETE_COUNT"
	AuditActionCancelCount       AuditAction = "CANCEL_COUNT"
	AuditActionUpdateSettings    AuditAction = "UPDATE_SETTINGS"
)

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceProduct    AuditResourceType = "product"
	AuditResourceSale       AuditResourceType = "sale"
	AuditResourceReturn     AuditResourceType = "return"
	AuditResourceAdjustment AuditResourceType = "stock_adjustment"
	AuditResourceCount      AuditResourceType = "inventory_count"
	AuditResourceSettings   AuditResourceType = "settings"
	AuditResourceEmployee   AuditResourceType = "employee"
)

// 監査ログ（店舗操作ログ）。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	//IDは監査ログの主キー
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//非同期配送のイベントID（UUID）。at-most-onceの追跡用。
	EventID string `gorm:"type:varchar(36);not null;uniqueIndex" json:"event_id"`

	//操作したスタッフのIDと名前（名前はスナップショット）
	ActorEmployeeID int64  `gorm:"not null;index" json:"actor_employee_id"`
	ActorName       string `gorm:"type:varchar(255);not null" json:"actor_name"`

	//Actionは操作の種類（PROCESS_RETURN / CREATE_ADJUSTMENT など）。
	Action AuditAction `gorm:"type:varchar(50);not null;index" json:"action"`

	//対象の種類（product / return / inventory_count など）。
	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`

	//対象のID
	ResourceID int64 `gorm:"not null;index" json:"resource_id"`

	//明細はJSON文字列で保存する。
	DetailsJSON string `gorm:"type:text" json:"details_json"`

	//作成時刻
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
