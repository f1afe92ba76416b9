package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"adagency/internal/app/config"
	"adagency/internal/app/ds"
	"adagency/internal/app/dto"
	"adagency/internal/app/middleware"
	"adagency/internal/app/repository"
	"adagency/internal/app/role"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const tokenIssuer = "adagency"

// TokenRevoker кладёт токен в чёрный список на заданное время
type TokenRevoker interface {
	WriteJWTToBlacklist(ctx context.Context, jwtStr string, jwtTTL time.Duration) error
}

type AuthHandler struct {
	Repository *repository.Repository
	Revoker    TokenRevoker
	Config     *config.Config
}

func NewAuthHandler(r *repository.Repository, revoker TokenRevoker, config *config.Config) *AuthHandler {
	return &AuthHandler{
		Repository: r,
		Revoker:    revoker,
		Config:     config,
	}
}

func (h *AuthHandler) issueToken(user *ds.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(h.signingMethod(), ds.JWTClaims{
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: now.Add(h.Config.JWT.ExpiresIn).Unix(),
			IssuedAt:  now.Unix(),
			Issuer:    tokenIssuer,
		},
		UserID: user.ID,
		Role:   user.Role,
	})
	return token.SignedString([]byte(h.Config.JWT.Token))
}

func (h *AuthHandler) signingMethod() jwt.SigningMethod {
	if h.Config.JWT.SigningMethod != nil {
		return h.Config.JWT.SigningMethod
	}
	return jwt.SigningMethodHS256
}

// RegisterUser регистрация нового клиента
// @Summary Регистрация пользователя
// @Description Создание клиента агентства. Сотрудники заводятся через сид миграции.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Данные для регистрации"
// @Success 201 {object} dto.SuccessResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/auth/register [post]
func (h *AuthHandler) RegisterUser(ctx *gin.Context) {
	var request dto.RegisterRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		bindError(ctx, err)
		return
	}
	email := strings.ToLower(strings.TrimSpace(request.Email))

	exists, err := h.Repository.UserExistsByEmail(ctx.Request.Context(), email)
	if err != nil {
		handleError(ctx, err)
		return
	}
	if exists {
		errorResponse(ctx, http.StatusBadRequest, "пользователь с таким email уже существует")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
	if err != nil {
		handleError(ctx, err)
		return
	}

	user := &ds.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         role.Client,
		FirstName:    request.FirstName,
		LastName:     request.LastName,
		Phone:        request.Phone,
	}
	if err := h.Repository.CreateUser(ctx.Request.Context(), user); err != nil {
		logrus.Error("Error creating user: ", err)
		errorResponse(ctx, http.StatusInternalServerError, "ошибка регистрации пользователя")
		return
	}

	accessToken, err := h.issueToken(user)
	if err != nil {
		handleError(ctx, err)
		return
	}

	successResponse(ctx, http.StatusCreated, "пользователь успешно зарегистрирован", gin.H{
		"user":  toUserResponse(user),
		"token": accessToken,
	})
}

// LoginUser аутентификация пользователя
// @Summary Вход в систему
// @Description Аутентификация пользователя с возвратом JWT токена
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Данные для входа"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 401 {object} dto.ErrorResponse
// @Router /api/auth/login [post]
func (h *AuthHandler) LoginUser(ctx *gin.Context) {
	var request dto.LoginRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		bindError(ctx, err)
		return
	}

	user, err := h.Repository.GetUserByEmail(ctx.Request.Context(), strings.ToLower(strings.TrimSpace(request.Email)))
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		handleError(ctx, err)
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(request.Password)) != nil {
		errorResponse(ctx, http.StatusUnauthorized, "неверный email или пароль")
		return
	}

	accessToken, err := h.issueToken(user)
	if err != nil {
		handleError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.LoginResponse{
		UserID:    user.ID,
		Role:      string(user.Role),
		Token:     accessToken,
		TokenType: "Bearer",
		ExpiresIn: int(h.Config.JWT.ExpiresIn.Seconds()),
	})
}

// LogoutUser выход пользователя из системы
// @Summary Выход из системы
// @Description Завершение сеанса с добавлением токена в blacklist до истечения его срока
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.SuccessResponse
// @Failure 401 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /api/auth/logout [post]
func (h *AuthHandler) LogoutUser(ctx *gin.Context) {
	tokenString := middleware.BearerToken(ctx.GetHeader("Authorization"))

	claims, err := middleware.ParseToken(tokenString, h.Config.JWT.Token)
	if err != nil {
		errorResponse(ctx, http.StatusUnauthorized, "некорректный токен")
		return
	}

	ttl := time.Until(time.Unix(claims.ExpiresAt, 0))
	if ttl > 0 {
		if err := h.Revoker.WriteJWTToBlacklist(ctx.Request.Context(), tokenString, ttl); err != nil {
			handleError(ctx, err)
			return
		}
	}

	successResponse(ctx, http.StatusOK, "пользователь успешно вышел из системы", nil)
}

// GetUserProfile получение профиля пользователя
// @Summary Получение профиля пользователя
// @Description Профиль с персональной скидкой и числом оплаченных заказов
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.UserResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/auth/profile [get]
func (h *AuthHandler) GetUserProfile(ctx *gin.Context) {
	userID, _, ok := middleware.CurrentUser(ctx)
	if !ok {
		errorResponse(ctx, http.StatusUnauthorized, "пользователь не авторизован")
		return
	}

	user, err := h.Repository.GetUserByID(ctx.Request.Context(), userID)
	if err != nil {
		handleError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, toUserResponse(user))
}

// UpdateProfile обновление профиля
// @Summary Обновление профиля
// @Tags Authentication
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.UpdateProfileRequest true "Изменяемые поля"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {object} dto.ErrorResponse
// @Router /api/auth/profile [put]
func (h *AuthHandler) UpdateProfile(ctx *gin.Context) {
	userID, _, ok := middleware.CurrentUser(ctx)
	if !ok {
		errorResponse(ctx, http.StatusUnauthorized, "пользователь не авторизован")
		return
	}

	var request dto.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		bindError(ctx, err)
		return
	}

	if err := h.Repository.UpdateUserProfile(ctx.Request.Context(), userID, request.FirstName, request.LastName, request.Phone); err != nil {
		handleError(ctx, err)
		return
	}

	user, err := h.Repository.GetUserByID(ctx.Request.Context(), userID)
	if err != nil {
		handleError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, toUserResponse(user))
}
