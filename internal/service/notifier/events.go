package notifier

import (
	"github.com/carepulse/hms-api/internal/model"
)

// Outbound frame envelopes. Every frame carries a top-level "type"
// discriminator the clients switch on.

type NotificationPush struct {
	Type         string              `json:"type"`
	Notification *model.Notification `json:"notification"`
}

// AppointmentUpdate is the realtime schedule-grid refresh signal sent to the
// doctor alongside the persisted appointment notification.
type AppointmentUpdate struct {
	Type            string `json:"type"`
	Event           string `json:"event"`
	AppointmentID   string `json:"appointmentId"`
	DoctorID        string `json:"doctorId"`
	AppointmentDate string `json:"appointmentDate"`
	AppointmentTime string `json:"appointmentTime"`
	PatientName     string `json:"patientName"`
}

// SlotUpdate is broadcast to every connection when the slot grid changes.
// The inner discriminator is named slotEvent so it cannot shadow the
// envelope's own type field.
type SlotUpdate struct {
	Type        string `json:"type"`
	SlotEvent   string `json:"slotEvent"`
	SlotID      string `json:"slotId,omitempty"`
	DoctorID    string `json:"doctorId"`
	Date        string `json:"date"`
	StartTime   string `json:"startTime,omitempty"`
	PatientName string `json:"patientName,omitempty"`
	Count       int    `json:"count,omitempty"`
}

const (
	SlotEventBooked    = "slot.booked"
	SlotEventCancelled = "slot.cancelled"
	SlotEventGenerated = "slots.generated"
)

type BillUpdate struct {
	Type        string  `json:"type"`
	Event       string  `json:"event"`
	BillID      string  `json:"billId"`
	PatientID   string  `json:"patientId"`
	TotalAmount float64 `json:"totalAmount"`
	Status      string  `json:"status"`
}

type HealthTipPush struct {
	Type  string           `json:"type"`
	Event string           `json:"event"`
	Tip   *model.HealthTip `json:"tip"`
}

// roleEnvelope maps a dashboard role to the frame type its clients listen
// for.
func roleEnvelope(role model.Role) string {
	switch role {
	case model.RoleNurse:
		return "nurse_notification"
	case model.RoleOPDManager:
		return "opd_notification"
	default:
		return "admin_notification"
	}
}

// roleEvent builds a role-filtered dashboard frame: the envelope type, the
// event name, and the event's own fields flattened alongside them.
func roleEvent(role model.Role, event string, fields model.JSONMap) model.JSONMap {
	payload := model.JSONMap{
		"type":  roleEnvelope(role),
		"event": event,
	}
	for k, v := range fields {
		payload[k] = v
	}
	return payload
}
