package handler

import (
	"net/http"

	"adagency/internal/app/dto"

	"github.com/gin-gonic/gin"
)

// ============ ДОМЕН ПЛАТЕЖИ ============

// CreatePayment регистрирует платёж
// @Summary Регистрация платежа
// @Description Создаёт платёж в статусе pending. Заказ не меняется до подтверждения.
// @Tags Payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreatePaymentRequest true "Платёж"
// @Success 200 {object} dto.PaymentResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/payments [post]
func (h *APIHandler) CreatePayment(c *gin.Context) {
	var req dto.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if _, ok := h.accessibleOrder(c, req.OrderID); !ok {
		return
	}

	p, err := h.Payments.Create(c.Request.Context(), req.OrderID, req.Amount)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.PaymentResponse{
		ID:        p.ID,
		OrderID:   p.OrderID,
		Amount:    p.Amount,
		Status:    p.Status,
		CreatedAt: p.CreatedAt,
	})
}

// ConfirmPayment подтверждает оплату заказа
// @Summary Подтверждение оплаты
// @Description Атомарно переводит заказ в paid, увеличивает счётчик заказов клиента и пересчитывает его скидку (менеджер, директор)
// @Tags Payments
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID заказа"
// @Success 200 {object} dto.ConfirmPaymentResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/payments/{id}/confirm [patch]
func (h *APIHandler) ConfirmPayment(c *gin.Context) {
	orderID, ok := parseID(c, "id")
	if !ok {
		return
	}

	res, err := h.Payments.Confirm(c.Request.Context(), orderID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ConfirmPaymentResponse{
		Order:            toOrderResponse(res.Order, h.Orders.Now()),
		MonthlyOrders:    res.Discount.MonthlyOrders,
		PersonalDiscount: res.Discount.Current,
		DiscountChanged:  res.Discount.Changed,
	})
}
