// Package discount пересчитывает персональную скидку клиента по числу его
// оплаченных заказов за текущий календарный месяц.
package discount

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Store данные, нужные для пересчёта скидки
type Store interface {
	// DiscountSnapshot возвращает текущую скидку и число оплаченных заказов
	// пользователя, созданных в [from, to)
	DiscountSnapshot(ctx context.Context, userID uint, from, to time.Time) (current int, monthly int64, err error)
	SetPersonalDiscount(ctx context.Context, userID uint, percent int) error
}

// Tier переводит число заказов за месяц в процент скидки.
// Пороги строгие: ровно 3, 10 и 20 заказов остаются на нижней ступени.
func Tier(monthlyOrders int64) int {
	switch {
	case monthlyOrders > 20:
		return 20
	case monthlyOrders > 10:
		return 10
	case monthlyOrders > 3:
		return 5
	default:
		return 0
	}
}

// Result итог пересчёта
type Result struct {
	UserID        uint  `json:"user_id"`
	MonthlyOrders int64 `json:"monthly_orders"`
	Previous      int   `json:"previous_discount"`
	Current       int   `json:"personal_discount"`
	Changed       bool  `json:"changed"`
}

type Engine struct {
	store Store
	now   func() time.Time
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

// WithClock подменяет источник текущего времени
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// MonthWindow границы календарного месяца, в который попадает t
func MonthWindow(t time.Time) (time.Time, time.Time) {
	from := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	return from, from.AddDate(0, 1, 0)
}

// Recompute пересчитывает скидку пользователя. Запись в базу происходит,
// только если ступень изменилась, в обе стороны.
func (e *Engine) Recompute(ctx context.Context, userID uint) (Result, error) {
	from, to := MonthWindow(e.now())

	current, monthly, err := e.store.DiscountSnapshot(ctx, userID, from, to)
	if err != nil {
		return Result{}, fmt.Errorf("discount snapshot for user %d: %w", userID, err)
	}

	res := Result{
		UserID:        userID,
		MonthlyOrders: monthly,
		Previous:      current,
		Current:       Tier(monthly),
	}
	if res.Current == current {
		return res, nil
	}

	if err := e.store.SetPersonalDiscount(ctx, userID, res.Current); err != nil {
		return Result{}, fmt.Errorf("set discount for user %d: %w", userID, err)
	}
	res.Changed = true

	logrus.WithFields(logrus.Fields{
		"user_id":  userID,
		"orders":   monthly,
		"previous": current,
		"current":  res.Current,
	}).Info("personal discount changed")

	return res, nil
}
