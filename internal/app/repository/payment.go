package repository

import (
	"context"

	"adagency/internal/app/ds"

	"gorm.io/gorm/clause"
)

// Методы для работы с платежами

func (r *Repository) CreatePayment(ctx context.Context, payment *ds.Payment) error {
	return classify(r.db.WithContext(ctx).Omit(clause.Associations).Create(payment).Error)
}

// ConfirmOrderPayments переводит ожидающие платежи заказа в confirmed
func (r *Repository) ConfirmOrderPayments(ctx context.Context, orderID uint) error {
	return classify(r.db.WithContext(ctx).Model(&ds.Payment{}).
		Where("order_id = ? AND status = ?", orderID, ds.PaymentStatusPending).
		Update("status", ds.PaymentStatusConfirmed).Error)
}

func (r *Repository) ListOrderPayments(ctx context.Context, orderID uint) ([]ds.Payment, error) {
	var payments []ds.Payment
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).Order("id").Find(&payments).Error
	return payments, err
}
