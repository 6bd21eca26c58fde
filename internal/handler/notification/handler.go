package notification

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/carepulse/hms-api/internal/handler"
	"github.com/carepulse/hms-api/internal/middleware"
	"github.com/carepulse/hms-api/internal/model"
	"github.com/carepulse/hms-api/internal/repository"
)

type Handler struct {
	repo repository.NotificationRepository
}

func NewHandler(repo repository.NotificationRepository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	notifications := r.Group("/notifications")
	{
		notifications.GET("", h.ListNotifications)
		notifications.POST("/:id/read", h.MarkRead)
	}
}

// ListNotifications returns the caller's notifications, newest first. With
// ?incoming=true only unread items inside the incoming window are returned.
func (h *Handler) ListNotifications(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "unauthorized"})
		return
	}

	notifications, err := h.repo.ListForUser(c.Request.Context(), claims.UserID)
	if err != nil {
		handler.Error(c, err)
		return
	}

	if c.Query("incoming") == "true" {
		now := time.Now()
		incoming := make([]*model.Notification, 0, len(notifications))
		for _, n := range notifications {
			if n.IsIncoming(now) {
				incoming = append(incoming, n)
			}
		}
		notifications = incoming
	}

	handler.Success(c, http.StatusOK, notifications)
}

func (h *Handler) MarkRead(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "message": "unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid notification ID"})
		return
	}

	if err := h.repo.MarkRead(c.Request.Context(), id, claims.UserID); err != nil {
		handler.Error(c, err)
		return
	}

	handler.Success(c, http.StatusOK, gin.H{"id": id})
}
