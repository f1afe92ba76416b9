package handler

import (
	"net/http"

	"adagency/internal/app/ds"
	"adagency/internal/app/dto"

	"github.com/gin-gonic/gin"
)

// ============ ДОМЕН РЕСУРСЫ ============

// GetResources получает список ресурсов
// @Summary Получение списка ресурсов
// @Description Оборудование и персонал, которые можно добавить к заказу (ответ кэшируется)
// @Tags Resources
// @Produce json
// @Param available query bool false "Только доступные"
// @Success 200 {object} dto.ResourceListResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/resources [get]
func (h *APIHandler) GetResources(c *gin.Context) {
	resources, err := h.Catalog.ListResources(c.Request.Context(), c.Query("available") == "true")
	if err != nil {
		handleError(c, err)
		return
	}

	items := make([]dto.ResourceResponse, len(resources))
	for i, r := range resources {
		items[i] = toResourceResponse(r)
	}
	c.JSON(http.StatusOK, dto.ResourceListResponse{Resources: items, Total: len(items)})
}

// GetResource получает один ресурс
// @Summary Получение ресурса по ID
// @Tags Resources
// @Produce json
// @Param id path int true "ID ресурса"
// @Success 200 {object} dto.ResourceResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/resources/{id} [get]
func (h *APIHandler) GetResource(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	resource, err := h.Catalog.GetResource(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResourceResponse(*resource))
}

// CreateResource создает ресурс
// @Summary Создание ресурса
// @Tags Resources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateResourceRequest true "Данные ресурса"
// @Success 201 {object} dto.ResourceResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/resources [post]
func (h *APIHandler) CreateResource(c *gin.Context) {
	var req dto.CreateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resource := &ds.Resource{
		Name:        req.Name,
		Type:        req.Type,
		Cost:        req.Cost,
		IsAvailable: req.IsAvailable == nil || *req.IsAvailable,
	}
	if err := h.Catalog.CreateResource(c.Request.Context(), resource); err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toResourceResponse(*resource))
}

// UpdateResource изменяет ресурс
// @Summary Изменение ресурса
// @Tags Resources
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID ресурса"
// @Param request body dto.UpdateResourceRequest true "Изменяемые поля"
// @Success 200 {object} dto.ResourceResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/resources/{id} [put]
func (h *APIHandler) UpdateResource(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.Catalog.UpdateResource(c.Request.Context(), id, req.Fields()); err != nil {
		handleError(c, err)
		return
	}

	resource, err := h.Catalog.GetResource(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, toResourceResponse(*resource))
}

// DeleteResource удаляет ресурс
// @Summary Удаление ресурса
// @Description Ресурс, который уже входит в заказы, удалить нельзя
// @Tags Resources
// @Produce json
// @Security BearerAuth
// @Param id path int true "ID ресурса"
// @Success 200 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/resources/{id} [delete]
func (h *APIHandler) DeleteResource(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.Catalog.DeleteResource(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	successResponse(c, http.StatusOK, "Ресурс удалён", nil)
}
