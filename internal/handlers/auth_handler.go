package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/AGhilHz/rabik-crm/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler serves registration, login and session endpoints.
type AuthHandler struct {
	db       *gorm.DB
	rdb      *redis.Client
	jwtKey   []byte
	tokenTTL time.Duration
}

func NewAuthHandler(db *gorm.DB, rdb *redis.Client, jwtKey []byte, tokenTTL time.Duration) *AuthHandler {
	return &AuthHandler{db: db, rdb: rdb, jwtKey: jwtKey, tokenTTL: tokenTTL}
}

type registerPayload struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=8"`
}

type loginPayload struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register self-registers a customer account: one User row plus the
// linked Customer row, created as a unit.
func (h *AuthHandler) Register(c *gin.Context) {
	var payload registerPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
		return
	}

	user := models.User{
		Email:    payload.Email,
		Password: string(hashed),
		FullName: payload.FullName,
		Phone:    payload.Phone,
		Role:     models.RoleCustomer,
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		customer := models.Customer{
			UserID:   &user.ID,
			FullName: payload.FullName,
			Email:    payload.Email,
			Phone:    payload.Phone,
		}
		return tx.Create(&customer).Error
	})
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "could not create account: " + err.Error()})
		return
	}

	slog.Info("customer registered", "email", user.Email)
	c.JSON(http.StatusCreated, user)
}

// Login verifies credentials and issues a JWT, both as a cookie and in
// the response body.
func (h *AuthHandler) Login(c *gin.Context) {
	var payload loginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := h.db.First(&user, "email = ?", payload.Email).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(payload.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}
	if user.Status == models.CustomerStatusBlocked {
		c.JSON(http.StatusForbidden, gin.H{"error": "account is blocked"})
		return
	}

	claims := jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"exp":     time.Now().Add(h.tokenTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.jwtKey)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sign token"})
		return
	}

	c.SetCookie("auth_token", token, int(h.tokenTTL.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// Logout clears the session cookie and the cached user data.
func (h *AuthHandler) Logout(c *gin.Context) {
	if userID, ok := c.Get("user_id"); ok && h.rdb != nil {
		cacheKey := fmt.Sprintf("user:%s:data", userID)
		if err := h.rdb.Del(context.Background(), cacheKey).Err(); err != nil {
			slog.Warn("failed to drop cached user data", "error", err)
		}
	}
	c.SetCookie("auth_token", "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me returns the authenticated user's account.
func (h *AuthHandler) Me(c *gin.Context) {
	userID, _ := c.Get("user_id")
	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}
