package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationTypeAppointment  NotificationType = "appointment"
	NotificationTypePrescription NotificationType = "prescription"
	NotificationTypeSchedule     NotificationType = "schedule"
	NotificationTypeProfile      NotificationType = "profile"
	NotificationTypeAdmission    NotificationType = "admission"
	NotificationTypeDischarge    NotificationType = "discharge"
	NotificationTypeSystem       NotificationType = "system"
	NotificationTypeBill         NotificationType = "bill"
)

// IncomingWindow bounds how old an unread notification may be before the UI
// stops treating it as incoming.
const IncomingWindow = 3 * time.Hour

// Notification is a persisted, at-least-once-delivered message. UserID is a
// plain string rather than a UUID: reminder recipients may fall back to the
// patient name when no patient record is linked to an appointment.
type Notification struct {
	ID                uuid.UUID        `db:"id" json:"id"`
	UserID            string           `db:"user_id" json:"user_id"`
	UserRole          Role             `db:"user_role" json:"user_role"`
	Type              NotificationType `db:"type" json:"type"`
	Title             string           `db:"title" json:"title"`
	Message           string           `db:"message" json:"message"`
	RelatedEntityType string           `db:"related_entity_type" json:"related_entity_type,omitempty"`
	RelatedEntityID   string           `db:"related_entity_id" json:"related_entity_id,omitempty"`
	IsRead            bool             `db:"is_read" json:"is_read"`
	Metadata          string           `db:"metadata" json:"metadata,omitempty"`
	CreatedAt         time.Time        `db:"created_at" json:"created_at"`
}

// IsIncoming reports whether the notification should still surface as a live
// item: unread and younger than the incoming window.
func (n *Notification) IsIncoming(now time.Time) bool {
	return !n.IsRead && now.Sub(n.CreatedAt) <= IncomingWindow
}
