package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/BruksfildServices01/barber-assistant/internal/config"
	"github.com/BruksfildServices01/barber-assistant/internal/middleware"
)

const tokenTTL = 24 * time.Hour

type AuthHandler struct {
	config *config.Config
	now    func() time.Time
}

func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{config: cfg, now: time.Now}
}

// --------- Requests ---------

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// --------- Handlers ---------

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"details": err.Error(),
		})
		return
	}

	if h.config.AdminPasswordHash == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "operator_login_disabled"})
		return
	}

	username := strings.TrimSpace(req.Username)
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(h.config.AdminUsername)) == 1
	passErr := bcrypt.CompareHashAndPassword([]byte(h.config.AdminPasswordHash), []byte(req.Password))
	if !userOK || passErr != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
		return
	}

	token, expires, err := h.generateToken(username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_generate_token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"username": username,
			"role":     middleware.RoleAdmin,
		},
		"token":      token,
		"expires_at": expires,
	})
}

// --------- JWT ---------

func (h *AuthHandler) generateToken(username string) (string, time.Time, error) {
	now := h.now()
	expires := now.Add(tokenTTL)

	claims := jwt.MapClaims{
		"sub":  username,
		"role": middleware.RoleAdmin,
		"exp":  expires.Unix(),
		"iat":  now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(h.config.JWTSecret))
	return signed, expires, err
}
