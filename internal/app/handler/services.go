package handler

import (
	"io"
	"net/http"

	"adagency/internal/app/ds"
	"adagency/internal/app/dto"
	"adagency/internal/app/storage"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ============ ДОМЕН УСЛУГИ ============

// GetServices получает список услуг
// @Summary Получение списка услуг
// @Description Возвращает все услуги или только доступные (ответ кэшируется в Redis)
// @Tags Services
// @Produce json
// @Param available query bool false "Только доступные для заказа"
// @Success 200 {object} dto.ServiceListResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/services [get]
func (h *APIHandler) GetServices(c *gin.Context) {
	availableOnly := c.Query("available") == "true"

	services, err := h.Catalog.ListServices(c.Request.Context(), availableOnly)
	if err != nil {
		handleError(c, err)
		return
	}

	dtoServices := make([]dto.ServiceResponse, len(services))
	for i, s := range services {
		dtoServices[i] = h.toServiceResponse(c.Request.Context(), s)
	}

	c.JSON(http.StatusOK, dto.ServiceListResponse{
		Services: dtoServices,
		Total:    len(dtoServices),
	})
}

// GetService получает одну услугу
// @Summary Получение услуги по ID
// @Description Возвращает услугу вместе с ресурсами, которые можно к ней заказать
// @Tags Services
// @Produce json
// @Param id path int true "ID услуги"
// @Success 200 {object} dto.ServiceResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/services/{id} [get]
func (h *APIHandler) GetService(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	service, err := h.Catalog.GetService(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.toServiceResponse(c.Request.Context(), *service))
}

// CreateService создает новую услугу
// @Summary Создание услуги
// @Description Создает услугу и набор разрешённых ресурсов (менеджер, директор)
// @Tags Services
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateServiceRequest true "Данные услуги"
// @Success 201 {object} dto.ServiceResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/services [post]
func (h *APIHandler) CreateService(c *gin.Context) {
	var req dto.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	service := &ds.Service{
		Name:        req.Name,
		Type:        req.Type,
		Description: req.Description,
		BasePrice:   req.BasePrice,
		IsAvailable: req.IsAvailable == nil || *req.IsAvailable,
	}
	if err := h.Catalog.CreateService(c.Request.Context(), service, req.ResourceIDs); err != nil {
		handleError(c, err)
		return
	}

	created, err := h.Catalog.GetService(c.Request.Context(), service.ID)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.toServiceResponse(c.Request.Context(), *created))
}

// UpdateService изменяет услугу
// @Summary Изменение услуги
// @Description Частичное обновление полей услуги (менеджер, директор)
// @Tags Services
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID услуги"
// @Param request body dto.UpdateServiceRequest true "Изменяемые поля"
// @Success 200 {object} dto.ServiceResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/services/{id} [put]
func (h *APIHandler) UpdateService(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.Catalog.UpdateService(c.Request.Context(), id, req.Fields()); err != nil {
		handleError(c, err)
		return
	}

	service, err := h.Catalog.GetService(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toServiceResponse(c.Request.Context(), *service))
}

// SetServiceResources заменяет набор ресурсов услуги
// @Summary Ресурсы услуги
// @Description Полностью заменяет список ресурсов, которые можно заказать с услугой
// @Tags Services
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID услуги"
// @Param request body dto.ServiceResourcesRequest true "ID ресурсов"
// @Success 200 {object} dto.ServiceResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/services/{id}/resources [put]
func (h *APIHandler) SetServiceResources(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.ServiceResourcesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	ctx := c.Request.Context()
	if _, err := h.Catalog.GetService(ctx, id); err != nil {
		handleError(c, err)
		return
	}
	if err := h.Catalog.SetServiceResources(ctx, id, req.ResourceIDs); err != nil {
		handleError(c, err)
		return
	}

	service, err := h.Catalog.GetService(ctx, id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.toServiceResponse(ctx, *service))
}

// DeleteService удаляет услугу
// @Summary Удаление услуги
// @Description Удаляет услугу и её изображение. Услугу, по которой есть заказы, удалить нельзя.
// @Tags Services
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID услуги"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/services/{id} [delete]
func (h *APIHandler) DeleteService(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	service, err := h.Catalog.GetService(ctx, id)
	if err != nil {
		handleError(c, err)
		return
	}

	if err := h.Catalog.DeleteService(ctx, id); err != nil {
		handleError(c, err)
		return
	}

	if service.ImageURL != nil && h.Images != nil {
		if err := h.Images.Delete(ctx, *service.ImageURL); err != nil {
			logrus.Warnf("Failed to delete image %s: %v", *service.ImageURL, err)
		}
	}

	successResponse(c, http.StatusOK, "Услуга удалена", nil)
}

// UploadServiceImage загружает изображение для услуги
// @Summary Загрузка изображения услуги
// @Description Загружает изображение в MinIO и заменяет предыдущее (менеджер, директор)
// @Tags Services
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID услуги"
// @Param image formData file true "Файл изображения"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/services/{id}/image [post]
func (h *APIHandler) UploadServiceImage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if h.Images == nil {
		errorResponse(c, http.StatusServiceUnavailable, "Хранилище изображений не настроено")
		return
	}

	ctx := c.Request.Context()
	service, err := h.Catalog.GetService(ctx, id)
	if err != nil {
		handleError(c, err)
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		errorResponse(c, http.StatusBadRequest, "Файл не найден в запросе")
		return
	}
	if !storage.IsImage(file.Filename) {
		errorResponse(c, http.StatusBadRequest, "Поддерживаются только jpg, png, gif и webp")
		return
	}

	openedFile, err := file.Open()
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "Ошибка чтения файла")
		return
	}
	defer openedFile.Close()

	fileData, err := io.ReadAll(openedFile)
	if err != nil {
		errorResponse(c, http.StatusInternalServerError, "Ошибка чтения файла")
		return
	}

	name, err := h.Images.UploadServiceImage(ctx, id, fileData, file.Filename)
	if err != nil {
		logrus.Error("Error uploading to MinIO: ", err)
		errorResponse(c, http.StatusInternalServerError, "Ошибка загрузки изображения")
		return
	}

	if err := h.Catalog.SetServiceImage(ctx, id, &name); err != nil {
		handleError(c, err)
		return
	}

	// Старое изображение удаляем только после успешной замены ссылки
	if service.ImageURL != nil && *service.ImageURL != name {
		if err := h.Images.Delete(ctx, *service.ImageURL); err != nil {
			logrus.Warnf("Failed to delete old image %s: %v", *service.ImageURL, err)
		}
	}

	successResponse(c, http.StatusOK, "Изображение успешно загружено", gin.H{
		"image_url": h.imageURL(ctx, &name),
	})
}
