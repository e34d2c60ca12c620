package dto

import (
	"reflect"

	"github.com/drmelom/technical-test-BTG-Pactual/internal/core/domain"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// RegisterValidations teaches v how to validate decimal amounts.
// Decimals are presented to tags as their canonical string so no precision is lost.
func RegisterValidations(v *validator.Validate) error {
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	if err := v.RegisterValidation("decimal_gt0", decimalGreaterThanZero); err != nil {
		return err
	}
	return v.RegisterValidation("currency_units", wholeCurrencyUnits)
}

func decimalValue(field reflect.Value) any {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.String()
	}
	return nil
}

func decimalGreaterThanZero(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return d.IsPositive()
}

// wholeCurrencyUnits rejects amounts finer than the stored currency scale, e.g. "100000.005".
func wholeCurrencyUnits(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	return domain.IsWholeUnits(d)
}
