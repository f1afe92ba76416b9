package handler

import (
	"errors"
	"net/http"

	"adagency/internal/app/ds"
	"adagency/internal/app/dto"
	"adagency/internal/app/middleware"
	"adagency/internal/app/orders"
	"adagency/internal/app/pricing"
	"adagency/internal/app/repository"

	"github.com/gin-gonic/gin"
)

// ============ ДОМЕН ЗАКАЗЫ ============

// orderRequest разбирает тело заказа. Клиент всегда заказывает на себя,
// сотрудник может указать user_id клиента.
func orderRequest(c *gin.Context) (orders.CreateRequest, bool) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return orders.CreateRequest{}, false
	}

	userID, userRole, _ := middleware.CurrentUser(c)
	if userRole.IsStaff() && req.UserID != 0 {
		userID = req.UserID
	}

	eventDate, err := parseDate(req.EventDate)
	if err != nil {
		bindError(c, err)
		return orders.CreateRequest{}, false
	}
	endDate, err := parseOptionalDate(req.EndDate)
	if err != nil {
		bindError(c, err)
		return orders.CreateRequest{}, false
	}

	return orders.CreateRequest{
		UserID:      userID,
		ServiceID:   req.ServiceID,
		EventDate:   eventDate,
		EndDate:     endDate,
		ResourceIDs: req.Resources,
	}, true
}

// accessibleOrder загружает заказ и проверяет, что он принадлежит клиенту
// или запрос делает сотрудник
func (h *APIHandler) accessibleOrder(c *gin.Context, id uint) (*ds.Order, bool) {
	order, err := h.Orders.Get(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return nil, false
	}
	userID, userRole, _ := middleware.CurrentUser(c)
	if !userRole.IsStaff() && order.UserID != userID {
		errorResponse(c, http.StatusForbidden, "Нет доступа к заказу")
		return nil, false
	}
	return order, true
}

// CreateOrder создает заказ
// @Summary Создание заказа
// @Description Считает стоимость (базовая цена плюс разрешённые доступные ресурсы, умноженные на число дней) и сохраняет заказ со статусом new
// @Tags Orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateOrderRequest true "Параметры заказа"
// @Success 201 {object} dto.CreateOrderResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/orders [post]
func (h *APIHandler) CreateOrder(c *gin.Context) {
	req, ok := orderRequest(c)
	if !ok {
		return
	}

	order, err := h.Orders.Create(c.Request.Context(), req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.CreateOrderResponse{
		OrderID: order.ID,
		Total:   order.TotalCost,
	})
}

// QuoteOrder считает стоимость без сохранения
// @Summary Расчёт стоимости заказа
// @Description Возвращает итог и сумму с персональной скидкой клиента (скидка только для отображения)
// @Tags Orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateOrderRequest true "Параметры заказа"
// @Success 200 {object} dto.QuoteResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/orders/quote [post]
func (h *APIHandler) QuoteOrder(c *gin.Context) {
	req, ok := orderRequest(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	user, err := h.Repository.GetUserByID(ctx, req.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			err = orders.ErrUserNotFound
		}
		handleError(c, err)
		return
	}

	q, err := h.Orders.Quote(ctx, req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.QuoteResponse{
		DurationDays:     q.DurationDays,
		DailyRate:        q.DailyRate,
		Total:            q.Total,
		PersonalDiscount: user.PersonalDiscount,
		DiscountedTotal:  pricing.ApplyDiscount(q.Total, user.PersonalDiscount),
		ResourceIDs:      q.ResourceIDs,
	})
}

// GetOrders список заказов
// @Summary Список заказов
// @Description Клиент видит свои заказы, сотрудники все
// @Tags Orders
// @Produce json
// @Security BearerAuth
// @Param status query string false "Фильтр по сохранённому статусу"
// @Success 200 {object} dto.OrderListResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/orders [get]
func (h *APIHandler) GetOrders(c *gin.Context) {
	userID, userRole, _ := middleware.CurrentUser(c)

	var owner *uint
	if !userRole.IsStaff() {
		owner = &userID
	}

	list, err := h.Orders.List(c.Request.Context(), owner, c.Query("status"))
	if err != nil {
		handleError(c, err)
		return
	}

	now := h.Orders.Now()
	items := make([]dto.OrderResponse, len(list))
	for i := range list {
		items[i] = toOrderResponse(&list[i], now)
	}
	c.JSON(http.StatusOK, dto.OrderListResponse{Orders: items, Total: len(items)})
}

// GetOrder один заказ
// @Summary Получение заказа
// @Description Заказ с услугой, ресурсами и статусом для отображения
// @Tags Orders
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID заказа"
// @Success 200 {object} dto.OrderResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/orders/{id} [get]
func (h *APIHandler) GetOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	order, ok := h.accessibleOrder(c, id)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order, h.Orders.Now()))
}

// RescheduleOrder переносит даты заказа
// @Summary Перенос дат заказа
// @Description Неоплаченный заказ пересчитывается по текущим ценам. У оплаченного можно только сдвинуть даты без изменения длительности.
// @Tags Orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID заказа"
// @Param request body dto.RescheduleRequest true "Новые даты"
// @Success 200 {object} dto.OrderResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/orders/{id}/reschedule [post]
func (h *APIHandler) RescheduleOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	eventDate, err := parseDate(req.EventDate)
	if err != nil {
		bindError(c, err)
		return
	}
	endDate, err := parseOptionalDate(req.EndDate)
	if err != nil {
		bindError(c, err)
		return
	}

	if _, ok := h.accessibleOrder(c, id); !ok {
		return
	}

	order, err := h.Orders.Reschedule(c.Request.Context(), id, eventDate, endDate)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(order, h.Orders.Now()))
}

// UpdateOrderStatus меняет статус заказа
// @Summary Изменение статуса заказа
// @Description Статус перезаписывается без проверки переходов (менеджер, директор)
// @Tags Orders
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID заказа"
// @Param request body dto.UpdateStatusRequest true "Новый статус"
// @Success 200 {object} dto.OrderResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/orders/{id}/status [patch]
func (h *APIHandler) UpdateOrderStatus(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	order, err := h.Orders.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order, h.Orders.Now()))
}
