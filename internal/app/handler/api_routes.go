package handler

import (
	"net/http"

	"adagency/internal/app/middleware"
	"adagency/internal/app/role"

	"github.com/gin-gonic/gin"
)

// RegisterAPIRoutes регистрирует все REST API маршруты с авторизацией
func (h *APIHandler) RegisterAPIRoutes(router *gin.Engine, authMiddleware *middleware.AuthMiddleware) {
	api := router.Group("/api")

	anyUser := authMiddleware.WithAuthCheck()
	staff := authMiddleware.WithAuthCheck(role.Manager, role.Director)

	// ============ Услуги - чтение публичное, запись для сотрудников ============
	services := api.Group("/services")
	{
		services.GET("", h.GetServices)
		services.GET("/:id", h.GetService)

		services.POST("", staff, h.CreateService)
		services.PUT("/:id", staff, h.UpdateService)
		services.DELETE("/:id", staff, h.DeleteService)
		services.PUT("/:id/resources", staff, h.SetServiceResources)
		services.POST("/:id/image", staff, h.UploadServiceImage)
	}

	// ============ Ресурсы ============
	resources := api.Group("/resources")
	{
		resources.GET("", h.GetResources)
		resources.GET("/:id", h.GetResource)

		resources.POST("", staff, h.CreateResource)
		resources.PUT("/:id", staff, h.UpdateResource)
		resources.DELETE("/:id", staff, h.DeleteResource)
	}

	// ============ Заказы ============
	orders := api.Group("/orders")
	{
		orders.POST("", anyUser, h.CreateOrder)
		orders.POST("/quote", anyUser, h.QuoteOrder)
		orders.GET("", anyUser, h.GetOrders)
		orders.GET("/:id", anyUser, h.GetOrder)
		orders.POST("/:id/reschedule", anyUser, h.RescheduleOrder)

		orders.PATCH("/:id/status", staff, h.UpdateOrderStatus)
	}

	// ============ Платежи ============
	payments := api.Group("/payments")
	{
		payments.POST("", anyUser, h.CreatePayment)
		payments.PATCH("/:id/confirm", staff, h.ConfirmPayment)
	}

	// ============ Аутентификация ============
	auth := api.Group("/auth")
	{
		auth.POST("/register", h.AuthHandler.RegisterUser)
		auth.POST("/login", h.AuthHandler.LoginUser)

		auth.GET("/profile", anyUser, h.AuthHandler.GetUserProfile)
		auth.PUT("/profile", anyUser, h.AuthHandler.UpdateProfile)
		auth.POST("/logout", anyUser, h.AuthHandler.LogoutUser)
	}

	router.GET("/ping", h.Ping)
}

// Ping проверяет работоспособность API
// @Summary Проверка работоспособности
// @Description Проверяет соединение с базой
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} dto.ErrorResponse
// @Router /ping [get]
func (h *APIHandler) Ping(c *gin.Context) {
	if err := h.Repository.Ping(c.Request.Context()); err != nil {
		errorResponse(c, http.StatusServiceUnavailable, "база данных недоступна")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}
