package ds

// 4. Таблица многие-ко-многим (заказы-ресурсы). Набор фиксируется при создании
// заказа, повторяющиеся ресурсы дают повторяющиеся строки.
type OrderResource struct {
	ID         uint `gorm:"primaryKey"`
	OrderID    uint `gorm:"not null;index"`
	ResourceID uint `gorm:"not null;index"`

	Resource Resource `gorm:"foreignKey:ResourceID"`
}
