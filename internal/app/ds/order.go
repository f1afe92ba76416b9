package ds

import (
	"time"

	"github.com/shopspring/decimal"
)

// Статусы заказа. completed не хранится в БД, а вычисляется при отображении.
const (
	OrderStatusNew       = "new"
	OrderStatusPaid      = "paid"
	OrderStatusCancelled = "cancelled"
	OrderStatusCompleted = "completed"
)

// 3. Таблица заказов
type Order struct {
	ID        uint            `gorm:"primaryKey"`
	UserID    uint            `gorm:"not null;index"`
	ServiceID uint            `gorm:"not null;index"`
	EventDate time.Time       `gorm:"type:date;not null"` // Первый день размещения (включительно)
	EndDate   time.Time       `gorm:"type:date;not null"` // Последний день размещения (включительно)
	TotalCost decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status    string          `gorm:"type:varchar(20);not null"` // new, paid, cancelled
	CreatedAt time.Time       `gorm:"not null;index"`

	User      User            `gorm:"foreignKey:UserID"`
	Service   Service         `gorm:"foreignKey:ServiceID"`
	Resources []OrderResource `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// DisplayStatus статус для отображения: оплаченный заказ с прошедшей
// датой окончания показывается как completed
func (o *Order) DisplayStatus(now time.Time) string {
	if o.Status == OrderStatusPaid && now.After(endOfDay(o.EndDate)) {
		return OrderStatusCompleted
	}
	return o.Status
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
}

// 5. Таблица платежей
type Payment struct {
	ID        uint            `gorm:"primaryKey"`
	OrderID   uint            `gorm:"not null;index"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status    string          `gorm:"type:varchar(20);not null"` // pending, confirmed
	CreatedAt time.Time       `gorm:"not null"`

	Order Order `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

const (
	PaymentStatusPending   = "pending"
	PaymentStatusConfirmed = "confirmed"
)
