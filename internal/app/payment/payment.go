// Package payment регистрирует платежи и подтверждает оплату заказа.
package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"adagency/internal/app/discount"
	"adagency/internal/app/ds"
	"adagency/internal/app/orders"
	"adagency/internal/app/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type Service struct {
	repo *repository.Repository
	now  func() time.Time
}

func NewService(repo *repository.Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithClock подменяет источник текущего времени (граница месяца для скидки)
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create регистрирует платёж в статусе pending. Заказ при этом не меняется.
func (s *Service) Create(ctx context.Context, orderID uint, amount decimal.Decimal) (*ds.Payment, error) {
	if _, err := s.repo.GetOrderByID(ctx, orderID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, orders.ErrOrderNotFound
		}
		return nil, err
	}

	p := &ds.Payment{
		OrderID:   orderID,
		Amount:    amount,
		Status:    ds.PaymentStatusPending,
		CreatedAt: s.now(),
	}
	if err := s.repo.CreatePayment(ctx, p); err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}
	return p, nil
}

// ConfirmResult итог подтверждения оплаты
type ConfirmResult struct {
	Order    *ds.Order
	Discount discount.Result
}

// Confirm в одной транзакции переводит заказ в paid, увеличивает счётчик
// заказов владельца, подтверждает ожидающие платежи и пересчитывает его скидку.
// При любой ошибке все изменения откатываются.
func (s *Service) Confirm(ctx context.Context, orderID uint) (*ConfirmResult, error) {
	res := &ConfirmResult{}

	err := s.repo.InTx(ctx, func(tx *repository.Repository) error {
		order, err := tx.GetOrderByID(ctx, orderID)
		if errors.Is(err, repository.ErrNotFound) {
			return orders.ErrOrderNotFound
		}
		if err != nil {
			return err
		}
		if order.Status != ds.OrderStatusNew {
			return fmt.Errorf("%w: %s", orders.ErrInvalidOrderState, order.Status)
		}

		switched, err := tx.SwitchOrderStatus(ctx, orderID, ds.OrderStatusNew, ds.OrderStatusPaid)
		if err != nil {
			return fmt.Errorf("mark order paid: %w", err)
		}
		if !switched {
			return fmt.Errorf("%w: already confirmed", orders.ErrInvalidOrderState)
		}

		userID, err := tx.GetOrderOwner(ctx, orderID)
		if err != nil {
			return fmt.Errorf("get order owner: %w", err)
		}

		if err := tx.IncrementOrderCount(ctx, userID); err != nil {
			return fmt.Errorf("increment order count: %w", err)
		}

		if err := tx.ConfirmOrderPayments(ctx, orderID); err != nil {
			return fmt.Errorf("confirm payments: %w", err)
		}

		res.Discount, err = discount.NewEngine(tx).WithClock(s.now).Recompute(ctx, userID)
		if err != nil {
			return err
		}

		res.Order, err = tx.GetOrderByID(ctx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"order_id": orderID,
		"user_id":  res.Discount.UserID,
		"discount": res.Discount.Current,
	}).Info("payment confirmed")

	return res, nil
}
