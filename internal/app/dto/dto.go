package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout формат дат в запросах и ответах
const DateLayout = "2006-01-02"

// ============ Общие структуры ============

type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type SuccessResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// ============ Услуги ============

type ServiceResponse struct {
	ID          uint               `json:"id"`
	Name        string             `json:"name"`
	Type        string             `json:"type"`
	Description string             `json:"description"`
	ImageURL    string             `json:"image_url,omitempty"`
	BasePrice   decimal.Decimal    `json:"base_price"`
	IsAvailable bool               `json:"is_available"`
	Resources   []ResourceResponse `json:"resources,omitempty"` // Только для GET одной услуги
}

type ServiceListResponse struct {
	Services []ServiceResponse `json:"services"`
	Total    int               `json:"total"`
}

type CreateServiceRequest struct {
	Name        string          `json:"name" binding:"required,max=100"`
	Type        string          `json:"type" binding:"required,service_type"`
	Description string          `json:"description"`
	BasePrice   decimal.Decimal `json:"base_price" binding:"required,gt=0"`
	IsAvailable *bool           `json:"is_available"`
	ResourceIDs []uint          `json:"resource_ids"`
}

type UpdateServiceRequest struct {
	Name        *string          `json:"name" binding:"omitempty,min=1,max=100"`
	Type        *string          `json:"type" binding:"omitempty,service_type"`
	Description *string          `json:"description"`
	BasePrice   *decimal.Decimal `json:"base_price" binding:"omitempty,gt=0"`
	IsAvailable *bool            `json:"is_available"`
}

// Fields набор колонок для частичного обновления
func (r UpdateServiceRequest) Fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if r.Name != nil {
		fields["name"] = *r.Name
	}
	if r.Type != nil {
		fields["type"] = *r.Type
	}
	if r.Description != nil {
		fields["description"] = *r.Description
	}
	if r.BasePrice != nil {
		fields["base_price"] = *r.BasePrice
	}
	if r.IsAvailable != nil {
		fields["is_available"] = *r.IsAvailable
	}
	return fields
}

type ServiceResourcesRequest struct {
	ResourceIDs []uint `json:"resource_ids"`
}

// ============ Ресурсы ============

type ResourceResponse struct {
	ID          uint            `json:"id"`
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	Cost        decimal.Decimal `json:"cost"`
	IsAvailable bool            `json:"is_available"`
}

type ResourceListResponse struct {
	Resources []ResourceResponse `json:"resources"`
	Total     int                `json:"total"`
}

type CreateResourceRequest struct {
	Name        string          `json:"name" binding:"required,max=100"`
	Type        string          `json:"type" binding:"required,oneof=equipment personnel"`
	Cost        decimal.Decimal `json:"cost" binding:"required,gt=0"`
	IsAvailable *bool           `json:"is_available"`
}

type UpdateResourceRequest struct {
	Name        *string          `json:"name" binding:"omitempty,min=1,max=100"`
	Type        *string          `json:"type" binding:"omitempty,oneof=equipment personnel"`
	Cost        *decimal.Decimal `json:"cost" binding:"omitempty,gt=0"`
	IsAvailable *bool            `json:"is_available"`
}

func (r UpdateResourceRequest) Fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if r.Name != nil {
		fields["name"] = *r.Name
	}
	if r.Type != nil {
		fields["type"] = *r.Type
	}
	if r.Cost != nil {
		fields["cost"] = *r.Cost
	}
	if r.IsAvailable != nil {
		fields["is_available"] = *r.IsAvailable
	}
	return fields
}

// ============ Заказы ============

// CreateOrderRequest тело создания заказа и расчёта цены.
// user_id учитывается только для сотрудников, клиент заказывает на себя.
type CreateOrderRequest struct {
	UserID    uint    `json:"user_id"`
	ServiceID uint    `json:"service_id" binding:"required"`
	EventDate string  `json:"event_date" binding:"required,datetime=2006-01-02"`
	EndDate   *string `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
	Resources []uint  `json:"resources"`
}

type CreateOrderResponse struct {
	OrderID uint            `json:"orderId"`
	Total   decimal.Decimal `json:"total"`
}

type QuoteResponse struct {
	DurationDays     int             `json:"duration_days"`
	DailyRate        decimal.Decimal `json:"daily_rate"`
	Total            decimal.Decimal `json:"total"`
	PersonalDiscount int             `json:"personal_discount"`
	DiscountedTotal  decimal.Decimal `json:"discounted_total"`
	ResourceIDs      []uint          `json:"resource_ids"`
}

type RescheduleRequest struct {
	EventDate string  `json:"event_date" binding:"required,datetime=2006-01-02"`
	EndDate   *string `json:"end_date" binding:"omitempty,datetime=2006-01-02"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,order_status"`
}

type OrderResponse struct {
	ID            uint               `json:"id"`
	UserID        uint               `json:"user_id"`
	ServiceID     uint               `json:"service_id"`
	ServiceName   string             `json:"service_name,omitempty"`
	EventDate     string             `json:"event_date"`
	EndDate       string             `json:"end_date"`
	TotalCost     decimal.Decimal    `json:"total_cost"`
	Status        string             `json:"status"`
	DisplayStatus string             `json:"display_status"`
	CreatedAt     time.Time          `json:"created_at"`
	Resources     []ResourceResponse `json:"resources,omitempty"` // Только для GET одного заказа
}

type OrderListResponse struct {
	Orders []OrderResponse `json:"orders"`
	Total  int             `json:"total"`
}

// ============ Платежи ============

type CreatePaymentRequest struct {
	OrderID uint            `json:"order_id" binding:"required"`
	Amount  decimal.Decimal `json:"amount" binding:"required,gt=0"`
}

type PaymentResponse struct {
	ID        uint            `json:"id"`
	OrderID   uint            `json:"order_id"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

type ConfirmPaymentResponse struct {
	Order            OrderResponse `json:"order"`
	MonthlyOrders    int64         `json:"monthly_orders"`
	PersonalDiscount int           `json:"personal_discount"`
	DiscountChanged  bool          `json:"discount_changed"`
}

// ============ Пользователи ============

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email,max=100"`
	Password  string `json:"password" binding:"required,min=6"`
	FirstName string `json:"first_name" binding:"max=50"`
	LastName  string `json:"last_name" binding:"max=50"`
	Phone     string `json:"phone" binding:"max=20"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	UserID    uint   `json:"user_id"`
	Role      string `json:"role"`
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int    `json:"expires_in"`
}

type UpdateProfileRequest struct {
	FirstName *string `json:"first_name" binding:"omitempty,max=50"`
	LastName  *string `json:"last_name" binding:"omitempty,max=50"`
	Phone     *string `json:"phone" binding:"omitempty,max=20"`
}

type UserResponse struct {
	ID               uint      `json:"id"`
	Email            string    `json:"email"`
	Role             string    `json:"role"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	Phone            string    `json:"phone"`
	PersonalDiscount int       `json:"personal_discount"`
	OrderCount       int       `json:"order_count"`
	RegistrationDate time.Time `json:"registration_date"`
}
