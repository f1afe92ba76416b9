package dto

import (
	"reflect"
	"sync"

	"adagency/internal/app/ds"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var registerOnce sync.Once

// RegisterValidators подключает к валидатору gin денежный тип и доменные теги
// service_type, order_status. Повторный вызов ничего не делает.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
		_ = v.RegisterValidation("service_type", oneOf(
			ds.ServiceTypeTV, ds.ServiceTypeInternet, ds.ServiceTypeOutdoor, ds.ServiceTypeRadio, ds.ServiceTypeOther,
		))
		_ = v.RegisterValidation("order_status", oneOf(
			ds.OrderStatusNew, ds.OrderStatusPaid, ds.OrderStatusCancelled,
		))
	})
}

// decimalValue даёт валидатору число, чтобы работали required и gt
func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.InexactFloat64()
	}
	return nil
}

func oneOf(values ...string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		for _, v := range values {
			if s == v {
				return true
			}
		}
		return false
	}
}
