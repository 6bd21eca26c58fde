package healthtip

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/carepulse/hms-api/internal/handler"
	"github.com/carepulse/hms-api/internal/model"
	"github.com/carepulse/hms-api/internal/repository"
	healthtipService "github.com/carepulse/hms-api/internal/service/healthtip"
)

type Handler struct {
	scheduler *healthtipService.Scheduler
	repo      repository.HealthTipRepository
}

func NewHandler(scheduler *healthtipService.Scheduler, repo repository.HealthTipRepository) *Handler {
	return &Handler{scheduler: scheduler, repo: repo}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	tips := r.Group("/health-tips")
	{
		tips.GET("", h.ListTips)
		tips.POST("/trigger", h.TriggerTip)
	}
}

func (h *Handler) ListTips(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid limit"})
			return
		}
		limit = parsed
	}

	tips, err := h.repo.List(c.Request.Context(), limit)
	if err != nil {
		handler.Error(c, err)
		return
	}

	handler.Success(c, http.StatusOK, tips)
}

type triggerRequest struct {
	Slot string `json:"slot" binding:"required,tipslot"`
}

// TriggerTip generates and broadcasts a tip on demand, outside the scheduled
// windows.
func (h *Handler) TriggerTip(c *gin.Context) {
	var req triggerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	slot, err := model.ParseTipSlot(req.Slot)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	tip, err := h.scheduler.TriggerNow(c.Request.Context(), slot)
	if err != nil {
		handler.Error(c, err)
		return
	}

	handler.Success(c, http.StatusCreated, tip)
}
