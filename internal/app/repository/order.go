package repository

import (
	"context"
	"time"

	"adagency/internal/app/ds"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Методы для работы с заказами

// CreateOrder сохраняет заказ и по одной строке order_resources на каждый id.
// Должен вызываться внутри транзакции.
func (r *Repository) CreateOrder(ctx context.Context, order *ds.Order, resourceIDs []uint) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit(clause.Associations).Create(order).Error; err != nil {
		return classify(err)
	}
	if len(resourceIDs) == 0 {
		return nil
	}

	links := make([]ds.OrderResource, len(resourceIDs))
	for i, id := range resourceIDs {
		links[i] = ds.OrderResource{OrderID: order.ID, ResourceID: id}
	}
	return classify(db.Omit(clause.Associations).Create(&links).Error)
}

// GetOrderByID возвращает заказ без связей
func (r *Repository) GetOrderByID(ctx context.Context, id uint) (*ds.Order, error) {
	var order ds.Order
	if err := r.db.WithContext(ctx).First(&order, id).Error; err != nil {
		return nil, classify(err)
	}
	return &order, nil
}

// GetOrderDetails возвращает заказ с услугой и выбранными ресурсами
func (r *Repository) GetOrderDetails(ctx context.Context, id uint) (*ds.Order, error) {
	var order ds.Order
	err := r.db.WithContext(ctx).
		Preload("Service").
		Preload("Resources", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Resources.Resource").
		First(&order, id).Error
	if err != nil {
		return nil, classify(err)
	}
	return &order, nil
}

// ListOrders возвращает заказы, при userID != nil только заказы пользователя
func (r *Repository) ListOrders(ctx context.Context, userID *uint, status string) ([]ds.Order, error) {
	var orders []ds.Order
	q := r.db.WithContext(ctx).Preload("Service").Order("created_at DESC")
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// OrderResourceCosts возвращает текущую стоимость ресурсов заказа, по одному
// значению на каждую строку order_resources
func (r *Repository) OrderResourceCosts(ctx context.Context, orderID uint) ([]decimal.Decimal, error) {
	var costs []decimal.Decimal
	err := r.db.WithContext(ctx).
		Table("order_resources").
		Joins("JOIN resources ON resources.id = order_resources.resource_id").
		Where("order_resources.order_id = ?", orderID).
		Order("order_resources.id").
		Pluck("resources.cost", &costs).Error
	if err != nil {
		return nil, err
	}
	return costs, nil
}

// UpdateOrderSchedule сохраняет новые даты и стоимость заказа
func (r *Repository) UpdateOrderSchedule(ctx context.Context, id uint, eventDate, endDate time.Time, total decimal.Decimal) error {
	return affected(r.db.WithContext(ctx).Model(&ds.Order{}).Where("id = ?", id).Updates(map[string]interface{}{
		"event_date": eventDate,
		"end_date":   endDate,
		"total_cost": total,
	}))
}

// UpdateOrderStatus перезаписывает статус без проверки переходов
func (r *Repository) UpdateOrderStatus(ctx context.Context, id uint, status string) error {
	return affected(r.db.WithContext(ctx).Model(&ds.Order{}).Where("id = ?", id).Update("status", status))
}

// SwitchOrderStatus меняет статус, только если текущий равен from.
// Возвращает false, если заказ уже в другом статусе или не найден.
func (r *Repository) SwitchOrderStatus(ctx context.Context, id uint, from, to string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&ds.Order{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, classify(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// GetOrderOwner возвращает id владельца заказа
func (r *Repository) GetOrderOwner(ctx context.Context, id uint) (uint, error) {
	var order ds.Order
	err := r.db.WithContext(ctx).Select("id", "user_id").First(&order, id).Error
	if err != nil {
		return 0, classify(err)
	}
	return order.UserID, nil
}
