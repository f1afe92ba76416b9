// Package orders создаёт заказы, пересчитывает их при переносе дат и меняет статус.
package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"adagency/internal/app/ds"
	"adagency/internal/app/pricing"
	"adagency/internal/app/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var (
	ErrServiceNotFound          = errors.New("service not found")
	ErrOrderNotFound            = errors.New("order not found")
	ErrUserNotFound             = errors.New("user not found")
	ErrDurationChangeNotAllowed = errors.New("paid order may only be shifted, not shortened or extended")
	ErrInvalidOrderState        = errors.New("order status does not allow this operation")
	ErrInvalidStatus            = errors.New("unknown order status")
)

type Service struct {
	repo *repository.Repository
	now  func() time.Time
}

func NewService(repo *repository.Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithClock подменяет источник текущего времени
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreateRequest параметры нового заказа
type CreateRequest struct {
	UserID      uint
	ServiceID   uint
	EventDate   time.Time
	EndDate     *time.Time // nil - однодневное размещение
	ResourceIDs []uint
}

// Quote расчёт стоимости без сохранения
type Quote struct {
	DurationDays int
	DailyRate    decimal.Decimal
	Total        decimal.Decimal
	// Ресурсы, попавшие в расчёт, в порядке запроса (с повторами)
	ResourceIDs []uint
}

// Quote считает стоимость заказа. Ресурсы, которые не разрешены для услуги
// или недоступны, молча отбрасываются.
func (s *Service) Quote(ctx context.Context, req CreateRequest) (*Quote, error) {
	return quote(ctx, s.repo, req)
}

func quote(ctx context.Context, repo *repository.Repository, req CreateRequest) (*Quote, error) {
	basePrice, err := repo.GetServicePrice(ctx, req.ServiceID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get service price: %w", err)
	}

	allowed, err := repo.AllowedResourceCosts(ctx, req.ServiceID, req.ResourceIDs)
	if err != nil {
		return nil, fmt.Errorf("get resource costs: %w", err)
	}

	ids := make([]uint, 0, len(req.ResourceIDs))
	costs := make([]decimal.Decimal, 0, len(req.ResourceIDs))
	for _, id := range req.ResourceIDs {
		cost, ok := allowed[id]
		if !ok {
			continue
		}
		ids = append(ids, id)
		costs = append(costs, cost)
	}

	total, days, err := pricing.OrderTotal(basePrice, costs, req.EventDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	return &Quote{
		DurationDays: days,
		DailyRate:    pricing.DailyRate(basePrice, costs),
		Total:        total,
		ResourceIDs:  ids,
	}, nil
}

// Create рассчитывает стоимость и в одной транзакции сохраняет заказ со статусом
// new и его ресурсы. Скидка клиента в итог не входит.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*ds.Order, error) {
	if _, err := s.repo.GetUserByID(ctx, req.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	q, err := s.Quote(ctx, req)
	if err != nil {
		return nil, err
	}

	order := &ds.Order{
		UserID:    req.UserID,
		ServiceID: req.ServiceID,
		EventDate: req.EventDate,
		EndDate:   endOrStart(req.EventDate, req.EndDate),
		TotalCost: q.Total,
		Status:    ds.OrderStatusNew,
		CreatedAt: s.now(),
	}

	err = s.repo.InTx(ctx, func(tx *repository.Repository) error {
		return tx.CreateOrder(ctx, order, q.ResourceIDs)
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"order_id": order.ID,
		"user_id":  order.UserID,
		"days":     q.DurationDays,
		"total":    order.TotalCost.String(),
	}).Info("order created")

	return order, nil
}

// Reschedule переносит даты заказа.
// Оплаченный заказ можно только сдвинуть: длительность и стоимость сохраняются.
// Неоплаченный пересчитывается по текущим ценам услуги и его ресурсов.
// Отменённые и завершённые заказы не переносятся.
func (s *Service) Reschedule(ctx context.Context, orderID uint, eventDate time.Time, endDate *time.Time) (*ds.Order, error) {
	newDays, err := pricing.DurationDays(eventDate, endDate)
	if err != nil {
		return nil, err
	}
	newEnd := endOrStart(eventDate, endDate)

	var updated *ds.Order
	err = s.repo.InTx(ctx, func(tx *repository.Repository) error {
		order, err := tx.GetOrderByID(ctx, orderID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}

		switch order.DisplayStatus(s.now()) {
		case ds.OrderStatusCancelled, ds.OrderStatusCompleted:
			return fmt.Errorf("%w: %s", ErrInvalidOrderState, order.DisplayStatus(s.now()))
		}

		total := order.TotalCost
		if order.Status == ds.OrderStatusPaid {
			oldDays, err := pricing.DurationDays(order.EventDate, &order.EndDate)
			if err != nil {
				return fmt.Errorf("stored dates of order %d: %w", orderID, err)
			}
			if oldDays != newDays {
				return ErrDurationChangeNotAllowed
			}
		} else {
			basePrice, err := tx.GetServicePrice(ctx, order.ServiceID)
			if errors.Is(err, repository.ErrNotFound) {
				return ErrServiceNotFound
			}
			if err != nil {
				return err
			}
			costs, err := tx.OrderResourceCosts(ctx, orderID)
			if err != nil {
				return err
			}
			total, _, err = pricing.OrderTotal(basePrice, costs, eventDate, &newEnd)
			if err != nil {
				return err
			}
		}

		if err := tx.UpdateOrderSchedule(ctx, orderID, eventDate, newEnd, total); err != nil {
			return err
		}
		updated, err = tx.GetOrderByID(ctx, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"order_id": orderID,
		"status":   updated.Status,
		"days":     newDays,
		"total":    updated.TotalCost.String(),
	}).Info("order rescheduled")

	return updated, nil
}

// UpdateStatus перезаписывает статус заказа без проверки допустимости перехода.
// completed только отображается, записать его нельзя.
func (s *Service) UpdateStatus(ctx context.Context, orderID uint, status string) (*ds.Order, error) {
	switch status {
	case ds.OrderStatusNew, ds.OrderStatusPaid, ds.OrderStatusCancelled:
	default:
		return nil, ErrInvalidStatus
	}

	if err := s.repo.UpdateOrderStatus(ctx, orderID, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return s.Get(ctx, orderID)
}

// Get возвращает заказ с услугой и ресурсами
func (s *Service) Get(ctx context.Context, orderID uint) (*ds.Order, error) {
	order, err := s.repo.GetOrderDetails(ctx, orderID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	return order, err
}

// List возвращает заказы пользователя (или все, если userID == nil)
func (s *Service) List(ctx context.Context, userID *uint, status string) ([]ds.Order, error) {
	return s.repo.ListOrders(ctx, userID, status)
}

// Now текущее время сервиса, используется для вычисления статуса отображения
func (s *Service) Now() time.Time {
	return s.now()
}

func endOrStart(start time.Time, end *time.Time) time.Time {
	if end == nil || end.IsZero() {
		return start
	}
	return *end
}
