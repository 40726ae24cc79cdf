package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barber-assistant/internal/config"
	"github.com/BruksfildServices01/barber-assistant/internal/middleware"
	"github.com/BruksfildServices01/barber-assistant/internal/timezone"
)

type MeHandler struct {
	config *config.Config
}

func NewMeHandler(cfg *config.Config) *MeHandler {
	return &MeHandler{config: cfg}
}

func (h *MeHandler) GetMe(c *gin.Context) {
	subject := c.GetString(middleware.ContextSubject)
	if subject == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user_not_in_context"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"username": subject,
			"role":     c.GetString(middleware.ContextRole),
		},
		"business": gin.H{
			"name":     h.config.BusinessName,
			"timezone": timezone.Location().String(),
			"open":     h.config.DefaultOpen,
			"close":    h.config.DefaultClose,
		},
	})
}
