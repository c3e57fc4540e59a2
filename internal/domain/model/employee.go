package model

import "time"

type Role string

const (
	RoleManager   Role = "Manager"
	RoleCashier   Role = "Cashier"
	RoleInventory Role = "Inventory"
)

// 有効なロールか（大文字小文字も区別する）
func (r Role) Valid() bool {
	switch r {
	case RoleManager, RoleCashier, RoleInventory:
		return true
	}
	return false
}

// レジ担当者・店長など店舗スタッフ
type Employee struct {
	ID   int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"type:varchar(255);not null" json:"name"`
	Role Role   `gorm:"type:varchar(20);not null" json:"role"`

	//PINはbcryptハッシュのみ保存する
	PINHash string `gorm:"column:pin_hash;not null" json:"-"`

	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}
