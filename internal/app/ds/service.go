package ds

import "github.com/shopspring/decimal"

// Типы рекламных услуг
const (
	ServiceTypeTV       = "tv"
	ServiceTypeInternet = "internet"
	ServiceTypeOutdoor  = "outdoor"
	ServiceTypeRadio    = "radio"
	ServiceTypeOther    = "other"
)

// 1. Таблица услуг (рекламные услуги агентства)
type Service struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"type:varchar(100);not null" json:"name"`
	Type        string          `gorm:"type:varchar(20);not null" json:"type"`
	BasePrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"base_price"` // Цена за день
	Description string          `gorm:"type:text" json:"description"`
	ImageURL    *string         `gorm:"type:varchar(255)" json:"image_url,omitempty"` // Имя объекта в MinIO, nullable
	IsAvailable bool            `gorm:"type:boolean;not null" json:"is_available"`

	// Ресурсы, которые можно добавить к заказу этой услуги
	Resources []Resource `gorm:"many2many:service_resources;constraint:OnDelete:CASCADE" json:"resources,omitempty"`
}

// 2. Таблица ресурсов (оборудование и персонал)
type Resource struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Name        string          `gorm:"type:varchar(100);not null" json:"name"`
	Type        string          `gorm:"type:varchar(20);not null" json:"type"` // equipment, personnel
	Cost        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"cost"` // Стоимость за день
	IsAvailable bool            `gorm:"type:boolean;not null" json:"is_available"`
}

const (
	ResourceTypeEquipment = "equipment"
	ResourceTypePersonnel = "personnel"
)
