// Package pricing считает стоимость заказа по дневным ставкам услуги и
// ресурсов и количеству дней размещения.
package pricing

import (
	"errors"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// ErrInvalidDateRange длительность размещения получилась не положительной
var ErrInvalidDateRange = errors.New("invalid date range")

const day = 24 * time.Hour

// DurationDays возвращает число дней размещения с учётом обеих границ.
// Если end не задан, размещение длится один день.
func DurationDays(start time.Time, end *time.Time) (int, error) {
	if start.IsZero() {
		return 0, ErrInvalidDateRange
	}
	if end == nil || end.IsZero() {
		return 1, nil
	}

	diff := end.Sub(start)
	days := int(math.Ceil(float64(diff)/float64(day))) + 1
	if days <= 0 {
		return 0, ErrInvalidDateRange
	}
	return days, nil
}

// DailyRate дневная ставка: базовая цена услуги плюс стоимость всех ресурсов
func DailyRate(basePrice decimal.Decimal, resourceCosts []decimal.Decimal) decimal.Decimal {
	rate := basePrice
	for _, c := range resourceCosts {
		rate = rate.Add(c)
	}
	return rate
}

// OrderTotal считает итог заказа: (база + Σ ресурсов) × дни
func OrderTotal(basePrice decimal.Decimal, resourceCosts []decimal.Decimal, start time.Time, end *time.Time) (decimal.Decimal, int, error) {
	days, err := DurationDays(start, end)
	if err != nil {
		return decimal.Zero, 0, err
	}
	total := DailyRate(basePrice, resourceCosts).Mul(decimal.NewFromInt(int64(days)))
	return total, days, nil
}

// ApplyDiscount применяет персональную скидку в процентах. Используется
// только для отображения: сервер сохраняет заказ без скидки.
func ApplyDiscount(total decimal.Decimal, percent int) decimal.Decimal {
	if percent <= 0 {
		return total
	}
	k := decimal.NewFromInt(int64(100 - percent)).Div(decimal.NewFromInt(100))
	return total.Mul(k).Round(2)
}
