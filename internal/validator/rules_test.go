package validator_test

import (
	"testing"

	"pos/internal/validator"

	"github.com/stretchr/testify/assert"
)

func TestValidatePIN(t *testing.T) {
	assert.NoError(t, validator.ValidatePIN("123456"))
	assert.NoError(t, validator.ValidatePIN("000000"))

	assert.EqualError(t, validator.ValidatePIN(""), "pin required")
	assert.EqualError(t, validator.ValidatePIN("12345"), "pin must be exactly 6 digits")
	assert.EqualError(t, validator.ValidatePIN("1234567"), "pin must be exactly 6 digits")
	assert.EqualError(t, validator.ValidatePIN("12a456"), "pin must contain only digits")
	assert.EqualError(t, validator.ValidatePIN("12 456"), "pin must contain only digits")
}

func TestValidateRole(t *testing.T) {
	assert.NoError(t, validator.ValidateRole("Manager"))
	assert.NoError(t, validator.ValidateRole("Cashier"))
	assert.NoError(t, validator.ValidateRole("Inventory"))

	//大文字小文字は区別する
	assert.Error(t, validator.ValidateRole("manager"))
	assert.Error(t, validator.ValidateRole("MANAGER"))
	assert.Error(t, validator.ValidateRole(""))
	assert.Error(t, validator.ValidateRole("Admin"))
}

func TestValidateProduct_CollectsAllFaults(t *testing.T) {
	err := validator.ValidateProduct(validator.ProductInput{
		Barcode:       " ",
		Name:          "",
		PriceCents:    0,
		CostCents:     -1,
		Stock:         -1,
		MinStockLevel: -1,
	})
	assert.Error(t, err)

	//違反は1つのメッセージに全部入る
	assert.Contains(t, err.Error(), "barcode required")
	assert.Contains(t, err.Error(), "name required")
	assert.Contains(t, err.Error(), "price must be > 0")
	assert.Contains(t, err.Error(), "cost must be >= 0")
	assert.Contains(t, err.Error(), "stock must be >= 0")
	assert.Contains(t, err.Error(), "min_stock_level must be >= 0")
}

func TestValidateProduct_OK(t *testing.T) {
	assert.NoError(t, validator.ValidateProduct(validator.ProductInput{
		Barcode:       "4900012345678",
		Name:          "Coffee",
		PriceCents:    350,
		CostCents:     120,
		Stock:         10,
		MinStockLevel: 3,
	}))
}

func TestValidateAdjustment(t *testing.T) {
	assert.NoError(t, validator.ValidateAdjustment(validator.AdjustmentInput{
		Type:           "DAMAGE",
		QuantityChange: -5,
		Reason:         "dropped",
	}))

	err := validator.ValidateAdjustment(validator.AdjustmentInput{
		Type:           "SHRINK",
		QuantityChange: 0,
		Reason:         " ",
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "quantity_change must not be 0")
	assert.Contains(t, err.Error(), "reason required")
	assert.Contains(t, err.Error(), `invalid adjustment_type: "SHRINK"`)
}

func TestValidateReturnCondition(t *testing.T) {
	assert.NoError(t, validator.ValidateReturnCondition("good"))
	assert.NoError(t, validator.ValidateReturnCondition("damaged"))
	assert.NoError(t, validator.ValidateReturnCondition("defective"))

	assert.Error(t, validator.ValidateReturnCondition("Good"))
	assert.Error(t, validator.ValidateReturnCondition(""))
	assert.Error(t, validator.ValidateReturnCondition("broken"))
}
