package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"adagency/internal/app/catalog"
	"adagency/internal/app/ds"
	"adagency/internal/app/dto"
	"adagency/internal/app/orders"
	"adagency/internal/app/payment"
	"adagency/internal/app/pricing"
	"adagency/internal/app/repository"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ImageStore объектное хранилище изображений услуг
type ImageStore interface {
	UploadServiceImage(ctx context.Context, serviceID uint, data []byte, filename string) (string, error)
	Delete(ctx context.Context, name string) error
	URL(ctx context.Context, name string) (string, error)
}

// APIHandler содержит обработчики для REST API
type APIHandler struct {
	Repository  *repository.Repository
	Catalog     *catalog.Catalog
	Orders      *orders.Service
	Payments    *payment.Service
	Images      ImageStore // nil, если MinIO не настроен
	AuthHandler *AuthHandler
}

func NewAPIHandler(
	r *repository.Repository,
	c *catalog.Catalog,
	o *orders.Service,
	p *payment.Service,
	images ImageStore,
	authHandler *AuthHandler,
) *APIHandler {
	return &APIHandler{
		Repository:  r,
		Catalog:     c,
		Orders:      o,
		Payments:    p,
		Images:      images,
		AuthHandler: authHandler,
	}
}

// ============ Вспомогательные функции ============

func errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, dto.ErrorResponse{
		Status:  "fail",
		Message: message,
	})
}

func successResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	response := dto.SuccessResponse{
		Status:  "success",
		Message: message,
	}
	if data != nil {
		response.Data = data
	}
	c.JSON(statusCode, response)
}

// errorStatus сопоставляет доменную ошибку с HTTP-кодом и текстом для клиента
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, orders.ErrOrderNotFound):
		return http.StatusNotFound, "Заказ не найден"
	case errors.Is(err, orders.ErrServiceNotFound):
		return http.StatusNotFound, "Услуга не найдена"
	case errors.Is(err, orders.ErrUserNotFound):
		return http.StatusNotFound, "Пользователь не найден"
	case errors.Is(err, repository.ErrUnknownResource):
		return http.StatusNotFound, "Ресурс не найден"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "Запись не найдена"
	case errors.Is(err, pricing.ErrInvalidDateRange):
		return http.StatusBadRequest, "Дата окончания раньше даты начала"
	case errors.Is(err, orders.ErrDurationChangeNotAllowed):
		return http.StatusBadRequest, "Для оплаченного заказа можно сдвинуть даты, но не изменить длительность"
	case errors.Is(err, orders.ErrInvalidOrderState):
		return http.StatusBadRequest, "Текущий статус заказа не допускает эту операцию"
	case errors.Is(err, orders.ErrInvalidStatus):
		return http.StatusBadRequest, "Неизвестный статус заказа"
	case errors.Is(err, repository.ErrInUse):
		return http.StatusBadRequest, "нельзя удалить: запись используется"
	default:
		return http.StatusInternalServerError, "Внутренняя ошибка сервера"
	}
}

// handleError логирует ошибку и пишет ответ с подходящим кодом
func handleError(c *gin.Context, err error) {
	status, message := errorStatus(err)
	entry := logrus.WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.FullPath(),
		"status": status,
	})
	if status >= http.StatusInternalServerError {
		entry.Error(err)
	} else {
		entry.Warn(err)
	}
	errorResponse(c, status, message)
}

func bindError(c *gin.Context, err error) {
	logrus.Warn("invalid request body: ", err)
	errorResponse(c, http.StatusBadRequest, "Некорректные данные запроса: "+err.Error())
}

func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 32)
	if err != nil || id == 0 {
		errorResponse(c, http.StatusBadRequest, "Неверный ID")
		return 0, false
	}
	return uint(id), true
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(dto.DateLayout, s)
}

func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := parseDate(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ============ Преобразование в DTO ============

func toResourceResponse(r ds.Resource) dto.ResourceResponse {
	return dto.ResourceResponse{
		ID:          r.ID,
		Name:        r.Name,
		Type:        r.Type,
		Cost:        r.Cost,
		IsAvailable: r.IsAvailable,
	}
}

func (h *APIHandler) toServiceResponse(ctx context.Context, s ds.Service) dto.ServiceResponse {
	resp := dto.ServiceResponse{
		ID:          s.ID,
		Name:        s.Name,
		Type:        s.Type,
		Description: s.Description,
		BasePrice:   s.BasePrice,
		IsAvailable: s.IsAvailable,
		ImageURL:    h.imageURL(ctx, s.ImageURL),
	}
	for _, r := range s.Resources {
		resp.Resources = append(resp.Resources, toResourceResponse(r))
	}
	return resp
}

// imageURL отдаёт временную ссылку MinIO, а без хранилища имя объекта как есть
func (h *APIHandler) imageURL(ctx context.Context, name *string) string {
	if name == nil || *name == "" {
		return ""
	}
	if h.Images == nil {
		return *name
	}
	url, err := h.Images.URL(ctx, *name)
	if err != nil {
		logrus.Warnf("Failed to presign image %s: %v", *name, err)
		return ""
	}
	return url
}

func toOrderResponse(o *ds.Order, now time.Time) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:            o.ID,
		UserID:        o.UserID,
		ServiceID:     o.ServiceID,
		ServiceName:   o.Service.Name,
		EventDate:     o.EventDate.Format(dto.DateLayout),
		EndDate:       o.EndDate.Format(dto.DateLayout),
		TotalCost:     o.TotalCost,
		Status:        o.Status,
		DisplayStatus: o.DisplayStatus(now),
		CreatedAt:     o.CreatedAt,
	}
	for _, link := range o.Resources {
		resp.Resources = append(resp.Resources, toResourceResponse(link.Resource))
	}
	return resp
}

func toUserResponse(u *ds.User) dto.UserResponse {
	return dto.UserResponse{
		ID:               u.ID,
		Email:            u.Email,
		Role:             string(u.Role),
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		Phone:            u.Phone,
		PersonalDiscount: u.PersonalDiscount,
		OrderCount:       u.OrderCount,
		RegistrationDate: u.RegistrationDate,
	}
}
