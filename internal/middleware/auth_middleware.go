package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/AGhilHz/rabik-crm/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// CachedUserData is the per-user payload kept in Redis so request
// handling does not hit the users table on every call.
type CachedUserData struct {
	UserID     string  `json:"user_id"`
	Email      string  `json:"email"`
	Role       string  `json:"role"`
	CustomerID *string `json:"customer_id"`
}

const userCacheTTL = 10 * time.Minute

// Auth builds the authentication middleware: it accepts the token from
// the auth_token cookie or a bearer header, validates it, and loads the
// user's data from cache or the database. rdb may be nil, which disables
// caching.
func Auth(db *gorm.DB, rdb *redis.Client, jwtKey []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := c.Cookie("auth_token")
		if err != nil || tokenStr == "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader == "" {
				abortUnauthorized(c, "authorization token not provided")
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				abortUnauthorized(c, "invalid Authorization header format")
				return
			}
			tokenStr = parts[1]
		}

		token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return jwtKey, nil
		})
		if err != nil || !token.Valid {
			c.SetCookie("auth_token", "", -1, "/", "", false, true)
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abortUnauthorized(c, "invalid token claims")
			return
		}
		userID, ok := claims["user_id"].(string)
		if !ok || userID == "" {
			abortUnauthorized(c, "invalid user ID in token")
			return
		}

		cacheKey := fmt.Sprintf("user:%s:data", userID)
		if rdb != nil {
			cached, err := rdb.Get(context.Background(), cacheKey).Result()
			if err == nil {
				var userData CachedUserData
				if json.Unmarshal([]byte(cached), &userData) == nil {
					setContextAndProceed(c, &userData)
					return
				}
				slog.Warn("failed to unmarshal cached user data", "user_id", userID)
			} else if err != redis.Nil {
				slog.Error("redis GET failed", "error", err, "user_id", userID)
			}
		}

		var user models.User
		if err := db.First(&user, "id = ?", userID).Error; err != nil {
			c.SetCookie("auth_token", "", -1, "/", "", false, true)
			abortUnauthorized(c, "user from token not found")
			return
		}

		userData := CachedUserData{
			UserID: user.ID,
			Email:  user.Email,
			Role:   user.Role,
		}
		var customer models.Customer
		if err := db.Select("id").First(&customer, "user_id = ?", user.ID).Error; err == nil {
			userData.CustomerID = &customer.ID
		}

		if rdb != nil {
			if jsonData, err := json.Marshal(userData); err == nil {
				if err := rdb.Set(context.Background(), cacheKey, jsonData, userCacheTTL).Err(); err != nil {
					slog.Error("failed to cache user data", "error", err, "user_id", userID)
				}
			}
		}

		setContextAndProceed(c, &userData)
	}
}

func setContextAndProceed(c *gin.Context, userData *CachedUserData) {
	c.Set("user_id", userData.UserID)
	c.Set("email", userData.Email)
	c.Set("role", userData.Role)
	if userData.CustomerID != nil {
		c.Set("customer_id", *userData.CustomerID)
	}
	c.Next()
}

// RequireAdmin guards admin-only route groups.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if role, _ := c.Get("role"); role == models.RoleAdmin {
			c.Next()
			return
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
		c.Abort()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": message})
	c.Abort()
}
