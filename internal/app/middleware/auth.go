package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"adagency/internal/app/config"
	"adagency/internal/app/ds"
	"adagency/internal/app/role"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/sirupsen/logrus"
)

// Ключи контекста gin, которые заполняет WithAuthCheck
const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"
)

// TokenBlacklist хранилище отозванных токенов
type TokenBlacklist interface {
	IsJWTBlacklisted(ctx context.Context, token string) (bool, error)
}

type AuthMiddleware struct {
	Blacklist TokenBlacklist
	Config    *config.Config
}

func NewAuthMiddleware(blacklist TokenBlacklist, cfg *config.Config) *AuthMiddleware {
	return &AuthMiddleware{
		Blacklist: blacklist,
		Config:    cfg,
	}
}

// BearerToken достаёт токен из заголовка Authorization
func BearerToken(header string) string {
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// WithAuthCheck middleware для проверки авторизации с ролями.
// Без ролей пускает любого аутентифицированного пользователя.
func (am *AuthMiddleware) WithAuthCheck(assignedRoles ...role.Role) gin.HandlerFunc {
	return func(gCtx *gin.Context) {
		jwtStr := BearerToken(gCtx.GetHeader("Authorization"))
		if jwtStr == "" {
			gCtx.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		// Проверяем токен в blacklist Redis
		listed, err := am.Blacklist.IsJWTBlacklisted(gCtx.Request.Context(), jwtStr)
		if err != nil {
			logrus.Error("blacklist check failed: ", err)
			gCtx.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		if listed {
			gCtx.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		claims, err := ParseToken(jwtStr, am.Config.JWT.Token)
		if err != nil {
			gCtx.AbortWithStatus(http.StatusUnauthorized)
			return
		}

		if len(assignedRoles) > 0 && !hasRequiredRole(claims.Role, assignedRoles) {
			gCtx.AbortWithStatus(http.StatusForbidden)
			return
		}

		gCtx.Set(ContextUserID, claims.UserID)
		gCtx.Set(ContextUserRole, claims.Role)

		gCtx.Next()
	}
}

// ParseToken проверяет подпись и срок действия токена
func ParseToken(tokenString, secret string) (*ds.JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ds.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*ds.JWTClaims)
	if !ok || !token.Valid || !claims.Role.Valid() {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

// CurrentUser возвращает id и роль, сохранённые WithAuthCheck
func CurrentUser(gCtx *gin.Context) (uint, role.Role, bool) {
	id, ok := gCtx.Get(ContextUserID)
	if !ok {
		return 0, "", false
	}
	userID, ok := id.(uint)
	if !ok {
		return 0, "", false
	}
	r, _ := gCtx.Get(ContextUserRole)
	userRole, _ := r.(role.Role)
	return userID, userRole, true
}

func hasRequiredRole(userRole role.Role, requiredRoles []role.Role) bool {
	for _, requiredRole := range requiredRoles {
		if userRole == requiredRole {
			return true
		}
	}
	return false
}
