package validator

import (
	"errors"
	"fmt"
	"strings"

	"pos/internal/domain/model"
)

// 入力が不正
var ErrInvalidInput = errors.New("invalid input")

// 書き込み前に呼ぶ純粋な検証関数だけを置く。
// 違反が複数あるときは全部まとめて1つのメッセージで返す。

// PINは「6桁ちょうど・数字のみ」
func ValidatePIN(pin string) error {
	if pin == "" {
		return errors.New("pin required")
	}
	if len(pin) != 6 {
		return errors.New("pin must be exactly 6 digits")
	}
	for _, c := range pin {
		if c < '0' || c > '9' {
			return errors.New("pin must contain only digits")
		}
	}
	return nil
}

// ロールは完全一致（大文字小文字も区別）
func ValidateRole(role string) error {
	if !model.Role(role).Valid() {
		return fmt.Errorf("invalid role: %q", role)
	}
	return nil
}

type ProductInput struct {
	Barcode       string
	Name          string
	PriceCents    int64
	CostCents     int64
	Stock         int64
	MinStockLevel int64
}

// 商品入力の検証。違反フィールドを列挙して返す。
func ValidateProduct(in ProductInput) error {
	var faults []string

	if strings.TrimSpace(in.Barcode) == "" {
		faults = append(faults, "barcode required")
	}
	if strings.TrimSpace(in.Name) == "" {
		faults = append(faults, "name required")
	}
	if in.PriceCents <= 0 {
		faults = append(faults, "price must be > 0")
	}
	if in.CostCents < 0 {
		faults = append(faults, "cost must be >= 0")
	}
	if in.Stock < 0 {
		faults = append(faults, "stock must be >= 0")
	}
	if in.MinStockLevel < 0 {
		faults = append(faults, "min_stock_level must be >= 0")
	}

	if len(faults) > 0 {
		return errors.New(strings.Join(faults, "; "))
	}
	return nil
}

type AdjustmentInput struct {
	Type           string
	QuantityChange int64
	Reason         string
}

// 在庫調整入力の検証。
// 「調整後に在庫がマイナスにならない」は商品の現在値が必要なのでusecase側で見る。
func ValidateAdjustment(in AdjustmentInput) error {
	var faults []string

	if in.QuantityChange == 0 {
		faults = append(faults, "quantity_change must not be 0")
	}
	if strings.TrimSpace(in.Reason) == "" {
		faults = append(faults, "reason required")
	}
	if !model.AdjustmentType(in.Type).Valid() {
		faults = append(faults, fmt.Sprintf("invalid adjustment_type: %q", in.Type))
	}

	if len(faults) > 0 {
		return errors.New(strings.Join(faults, "; "))
	}
	return nil
}

// 返品明細入力の形だけの検証（数量上限はDBの集計が要るのでusecase側）
func ValidateReturnCondition(cond string) error {
	switch model.ReturnCondition(cond) {
	case model.ReturnConditionGood, model.ReturnConditionDamaged, model.ReturnConditionDefective:
		return nil
	}
	return fmt.Errorf("invalid condition: %q", cond)
}
