package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/blues/fis/internal/config"
	"github.com/blues/fis/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// 上下文键
const (
	ContextUserId = "userId"
	ContextRole   = "role"
)

// Claims JWT载荷
type Claims struct {
	UserId int64          `json:"userId"`
	Role   model.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken 为用户签发JWT
func GenerateToken(userId int64, role model.UserRole, cfg *config.AuthConfig) (string, time.Time, error) {
	expiresAt := time.Now().Add(time.Duration(cfg.TokenTTLHours) * time.Hour)

	claims := Claims{
		UserId: userId,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// RequireAuth 校验JWT并限定允许的角色
//
// 缺失/非法token → 401；角色不在允许集合 → 403。
// roles 为空时只要求登录。
func RequireAuth(cfg *config.AuthConfig, roles ...model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Missing authorization token"})
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid authorization header format"})
			c.Abort()
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			c.Abort()
			return
		}

		if len(roles) > 0 && !roleAllowed(claims.Role, roles) {
			c.JSON(http.StatusForbidden, gin.H{"message": "Insufficient permissions"})
			c.Abort()
			return
		}

		c.Set(ContextUserId, claims.UserId)
		c.Set(ContextRole, claims.Role)

		c.Next()
	}
}

// CurrentUser 从上下文取当前用户身份
func CurrentUser(c *gin.Context) (int64, model.UserRole) {
	userId, _ := c.Get(ContextUserId)
	role, _ := c.Get(ContextRole)
	id, _ := userId.(int64)
	r, _ := role.(model.UserRole)
	return id, r
}

func roleAllowed(role model.UserRole, allowed []model.UserRole) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}
