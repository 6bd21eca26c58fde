package event

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/carepulse/hms-api/internal/handler"
	"github.com/carepulse/hms-api/internal/model"
	"github.com/carepulse/hms-api/internal/service/notifier"
)

// Handler exposes the domain event emitters to the clinical services that own
// the underlying business records. Each endpoint fans the event out exactly
// as its emitter defines; none of them touch the business record itself.
type Handler struct {
	notifier *notifier.Service
}

func NewHandler(notifSvc *notifier.Service) *Handler {
	return &Handler{notifier: notifSvc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	events := r.Group("/events")
	{
		events.POST("/admission", h.PatientAdmitted)
		events.POST("/discharge", h.PatientDischarged)
		events.POST("/prescription", h.PrescriptionCreated)
		events.POST("/schedule", h.ScheduleUpdated)
		events.POST("/profile", h.ProfileUpdated)
		events.POST("/bill-request", h.BillRequested)
		events.POST("/bill-update", h.BillUpdated)
		events.POST("/slot", h.SlotUpdate)
		events.POST("/system", h.SystemMessage)
	}
}

type admissionEvent struct {
	PatientID   string `json:"patient_id" binding:"required"`
	PatientName string `json:"patient_name" binding:"required"`
	DoctorID    string `json:"doctor_id" binding:"required"`
	AdmissionID string `json:"admission_id" binding:"required"`
}

func (h *Handler) PatientAdmitted(c *gin.Context) {
	var req admissionEvent
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	if err := h.notifier.NotifyPatientAdmission(c.Request.Context(), req.PatientID, req.PatientName, req.DoctorID, req.AdmissionID); err != nil {
		handler.Error(c, err)
		return
	}
	handler.Success(c, http.StatusAccepted, gin.H{"admission_id": req.AdmissionID})
}

func (h *Handler) PatientDischarged(c *gin.Context) {
	var req admissionEvent
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	if err := h.notifier.NotifyPatientDischarge(c.Request.Context(), req.PatientID, req.PatientName, req.DoctorID, req.AdmissionID); err != nil {
		handler.Error(c, err)
		return
	}
	handler.Success(c, http.StatusAccepted, gin.H{"admission_id": req.AdmissionID})
}

type prescriptionEvent struct {
	PatientID      string `json:"patient_id" binding:"required"`
	DoctorName     string `json:"doctor_name" binding:"required"`
	PrescriptionID string `json:"prescription_id" binding:"required"`
}

func (h *Handler) PrescriptionCreated(c *gin.Context) {
	var req prescriptionEvent
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	if err := h.notifier.NotifyPrescriptionCreated(c.Request.Context(), req.PatientID, req.DoctorName, req.PrescriptionID); err != nil {
		handler.Error(c, err)
		return
	}
	handler.Success(c, http.StatusAccepted, gin.H{"prescription_id": req.PrescriptionID})
}

type scheduleEvent struct {
	DoctorID string `json:"doctor_id" binding:"required"`
	Date     string `json:"date" binding:"required"`
}

func (h *Handler) ScheduleUpdated(c *gin.Context) {
	var req scheduleEvent
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	if err := h.notifier.NotifyScheduleUpdated(c.Request.Context(), req.DoctorID, req.Date); err != nil {
		handler.Error(c, err)
		return
	}
	handler.Success(c, http.StatusAccepted, gin.H{"doctor_id": req.DoctorID})
}

type profileEvent struct {
	UserID string `json:"user_id" binding:"required"`
	Role   string `json:"role" binding:"required,userrole"`
}

func (h *Handler) ProfileUpdated(c *gin.Context) {
	var req profileEvent
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	role, err := model.ParseRole(req.Role)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	if err := h.notifier.NotifyProfileUpdated(c.Request.Context(), req.UserID, role); err != nil {
		handler.Error(c, err)
		return
	}
	handler.Success(c, http.StatusAccepted, gin.H{"user_id": req.UserID})
}

type billRequestEvent struct {
	PatientID   string `json:"patient_id" binding:"required"`
	PatientName string `json:"patient_name" binding:"required"`
	AdmissionID string `json:"admission_id" binding:"required"`
}

func (h *Handler) BillRequested(c *gin.Context) {
	var req billRequestEvent
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	h.notifier.NotifyBillRequested(req.PatientID, req.PatientName, req.AdmissionID)
	handler.Success(c, http.StatusAccepted, gin.H{"admission_id": req.AdmissionID})
}

type billUpdateEvent struct {
	BillID      string  `json:"bill_id" binding:"required"`
	PatientID   string  `json:"patient_id" binding:"required"`
	TotalAmount float64 `json:"total_amount"`
	Status      string  `json:"status" binding:"required"`
}

func (h *Handler) BillUpdated(c *gin.Context) {
	var req billUpdateEvent
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	h.notifier.NotifyBillUpdated(req.BillID, req.PatientID, req.TotalAmount, req.Status)
	handler.Success(c, http.StatusAccepted, gin.H{"bill_id": req.BillID})
}

type slotEvent struct {
	Event       string `json:"event" binding:"required,oneof=slot.booked slot.cancelled slots.generated"`
	SlotID      string `json:"slot_id"`
	DoctorID    string `json:"doctor_id" binding:"required"`
	Date        string `json:"date" binding:"required"`
	StartTime   string `json:"start_time"`
	PatientName string `json:"patient_name"`
	Count       int    `json:"count"`
}

func (h *Handler) SlotUpdate(c *gin.Context) {
	var req slotEvent
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	h.notifier.NotifySlotUpdate(&notifier.SlotUpdate{
		SlotEvent:   req.Event,
		SlotID:      req.SlotID,
		DoctorID:    req.DoctorID,
		Date:        req.Date,
		StartTime:   req.StartTime,
		PatientName: req.PatientName,
		Count:       req.Count,
	})
	handler.Success(c, http.StatusAccepted, gin.H{"doctor_id": req.DoctorID})
}

type systemMessageEvent struct {
	UserID  string `json:"user_id" binding:"required"`
	Role    string `json:"role" binding:"required,userrole"`
	Title   string `json:"title" binding:"required"`
	Message string `json:"message" binding:"required"`
}

func (h *Handler) SystemMessage(c *gin.Context) {
	var req systemMessageEvent
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	role, err := model.ParseRole(req.Role)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": err.Error()})
		return
	}

	if err := h.notifier.NotifySystemMessage(c.Request.Context(), req.UserID, role, req.Title, req.Message); err != nil {
		handler.Error(c, err)
		return
	}
	handler.Success(c, http.StatusAccepted, gin.H{"user_id": req.UserID})
}
