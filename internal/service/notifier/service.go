package notifier

import (
	"context"
	"fmt"

	"github.com/carepulse/hms-api/internal/model"
	"github.com/carepulse/hms-api/internal/repository"
	"github.com/carepulse/hms-api/pkg/logger"
	"github.com/carepulse/hms-api/pkg/messaging"
	"github.com/carepulse/hms-api/pkg/metrics"
)

// Pusher is the delivery surface the notifier needs from the websocket hub.
type Pusher interface {
	SendToUser(userID string, payload interface{})
	Broadcast(payload interface{})
	BroadcastToRole(payload interface{}, role model.Role)
}

// Service composes durable notification records with live delivery. Every
// business event goes through one of the Notify* emitters, which decide who
// gets a persisted notification and which dashboards get a role broadcast.
type Service struct {
	hub           Pusher
	notifications repository.NotificationRepository
	broker        messaging.Broker
	logger        *logger.Logger
	metrics       *metrics.Metrics
}

func NewService(
	hub Pusher,
	notifications repository.NotificationRepository,
	broker messaging.Broker,
	logger *logger.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		hub:           hub,
		notifications: notifications,
		broker:        broker,
		logger:        logger,
		metrics:       m,
	}
}

// CreateAndPush persists the notification, then pushes it live to its
// recipient. The push happens only after a successful write: persistence is
// the source of truth, the push a latency optimization for online users.
func (s *Service) CreateAndPush(ctx context.Context, n *model.Notification) (*model.Notification, error) {
	if n.UserID == "" {
		return nil, fmt.Errorf("notification recipient is required")
	}

	if err := s.notifications.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	s.metrics.NotificationsCreated.WithLabelValues(string(n.Type)).Inc()

	s.hub.SendToUser(n.UserID, &NotificationPush{Type: "notification", Notification: n})
	s.metrics.NotificationPushes.Inc()

	// Best-effort mirror for out-of-process consumers.
	if s.broker != nil {
		if err := s.broker.Publish(ctx, "notifications", n); err != nil {
			s.logger.Error(err, "failed to mirror notification to broker", "notification_id", n.ID.String())
		}
	}

	return n, nil
}

// NotifyAppointmentCreated notifies the doctor and, when a patient record is
// linked, the patient; admin dashboards get a broadcast. The doctor also
// receives a direct schedule-grid refresh signal.
func (s *Service) NotifyAppointmentCreated(ctx context.Context, apt *model.Appointment, doctorName string) error {
	_, err := s.CreateAndPush(ctx, &model.Notification{
		UserID:            apt.DoctorID.String(),
		UserRole:          model.RoleDoctor,
		Type:              model.NotificationTypeAppointment,
		Title:             "New Appointment",
		Message:           fmt.Sprintf("New appointment with %s on %s at %s", apt.PatientName, apt.AppointmentDate, apt.TimeSlot),
		RelatedEntityType: "appointment",
		RelatedEntityID:   apt.ID.String(),
	})
	if err != nil {
		return err
	}

	if apt.PatientID != nil {
		_, err = s.CreateAndPush(ctx, &model.Notification{
			UserID:            apt.PatientID.String(),
			UserRole:          model.RolePatient,
			Type:              model.NotificationTypeAppointment,
			Title:             "Appointment Confirmed",
			Message:           fmt.Sprintf("Your appointment with Dr. %s is booked for %s at %s", doctorName, apt.AppointmentDate, apt.TimeSlot),
			RelatedEntityType: "appointment",
			RelatedEntityID:   apt.ID.String(),
		})
		if err != nil {
			return err
		}
	}

	s.hub.SendToUser(apt.DoctorID.String(), &AppointmentUpdate{
		Type:            "appointment_update",
		Event:           "created",
		AppointmentID:   apt.ID.String(),
		DoctorID:        apt.DoctorID.String(),
		AppointmentDate: apt.AppointmentDate,
		AppointmentTime: apt.TimeSlot,
		PatientName:     apt.PatientName,
	})

	s.hub.BroadcastToRole(roleEvent(model.RoleAdmin, "appointment_created", model.JSONMap{
		"appointmentId":   apt.ID.String(),
		"doctorId":        apt.DoctorID.String(),
		"patientName":     apt.PatientName,
		"appointmentDate": apt.AppointmentDate,
		"timeSlot":        apt.TimeSlot,
		"department":      apt.Department,
	}), model.RoleAdmin)

	return nil
}

// NotifyAppointmentUpdated notifies the doctor and the admin dashboards.
func (s *Service) NotifyAppointmentUpdated(ctx context.Context, apt *model.Appointment) error {
	_, err := s.CreateAndPush(ctx, &model.Notification{
		UserID:            apt.DoctorID.String(),
		UserRole:          model.RoleDoctor,
		Type:              model.NotificationTypeAppointment,
		Title:             "Appointment Updated",
		Message:           fmt.Sprintf("Appointment with %s on %s at %s is now %s", apt.PatientName, apt.AppointmentDate, apt.TimeSlot, apt.Status),
		RelatedEntityType: "appointment",
		RelatedEntityID:   apt.ID.String(),
	})
	if err != nil {
		return err
	}

	s.hub.BroadcastToRole(roleEvent(model.RoleAdmin, "appointment_updated", model.JSONMap{
		"appointmentId":   apt.ID.String(),
		"doctorId":        apt.DoctorID.String(),
		"patientName":     apt.PatientName,
		"appointmentDate": apt.AppointmentDate,
		"timeSlot":        apt.TimeSlot,
		"status":          string(apt.Status),
	}), model.RoleAdmin)

	return nil
}

// NotifyPrescriptionCreated notifies the patient; admin dashboards get a
// broadcast.
func (s *Service) NotifyPrescriptionCreated(ctx context.Context, patientID, doctorName, prescriptionID string) error {
	_, err := s.CreateAndPush(ctx, &model.Notification{
		UserID:            patientID,
		UserRole:          model.RolePatient,
		Type:              model.NotificationTypePrescription,
		Title:             "New Prescription",
		Message:           fmt.Sprintf("Dr. %s has issued you a new prescription", doctorName),
		RelatedEntityType: "prescription",
		RelatedEntityID:   prescriptionID,
	})
	if err != nil {
		return err
	}

	s.hub.BroadcastToRole(roleEvent(model.RoleAdmin, "prescription_created", model.JSONMap{
		"prescriptionId": prescriptionID,
		"patientId":      patientID,
		"doctorName":     doctorName,
	}), model.RoleAdmin)

	return nil
}

// NotifyScheduleUpdated notifies the doctor; admin and OPD dashboards get a
// broadcast.
func (s *Service) NotifyScheduleUpdated(ctx context.Context, doctorID, date string) error {
	_, err := s.CreateAndPush(ctx, &model.Notification{
		UserID:            doctorID,
		UserRole:          model.RoleDoctor,
		Type:              model.NotificationTypeSchedule,
		Title:             "Schedule Updated",
		Message:           fmt.Sprintf("Your schedule for %s has been updated", date),
		RelatedEntityType: "schedule",
		RelatedEntityID:   doctorID,
	})
	if err != nil {
		return err
	}

	fields := model.JSONMap{"doctorId": doctorID, "date": date}
	s.hub.BroadcastToRole(roleEvent(model.RoleAdmin, "schedule_updated", fields), model.RoleAdmin)
	s.hub.BroadcastToRole(roleEvent(model.RoleOPDManager, "schedule_updated", fields), model.RoleOPDManager)

	return nil
}

// NotifyPatientAdmission notifies the admitting doctor; admin, nurse and OPD
// dashboards get a broadcast.
func (s *Service) NotifyPatientAdmission(ctx context.Context, patientID, patientName, doctorID, admissionID string) error {
	_, err := s.CreateAndPush(ctx, &model.Notification{
		UserID:            doctorID,
		UserRole:          model.RoleDoctor,
		Type:              model.NotificationTypeAdmission,
		Title:             "Patient Admitted",
		Message:           fmt.Sprintf("%s has been admitted under your care", patientName),
		RelatedEntityType: "admission",
		RelatedEntityID:   admissionID,
	})
	if err != nil {
		return err
	}

	fields := model.JSONMap{
		"admissionId": admissionID,
		"patientId":   patientID,
		"patientName": patientName,
		"doctorId":    doctorID,
	}
	for _, role := range []model.Role{model.RoleAdmin, model.RoleNurse, model.RoleOPDManager} {
		s.hub.BroadcastToRole(roleEvent(role, "patient_admitted", fields), role)
	}

	return nil
}

// NotifyPatientDischarge notifies the doctor; admin and nurse dashboards get
// a broadcast.
func (s *Service) NotifyPatientDischarge(ctx context.Context, patientID, patientName, doctorID, admissionID string) error {
	_, err := s.CreateAndPush(ctx, &model.Notification{
		UserID:            doctorID,
		UserRole:          model.RoleDoctor,
		Type:              model.NotificationTypeDischarge,
		Title:             "Patient Discharged",
		Message:           fmt.Sprintf("%s has been discharged", patientName),
		RelatedEntityType: "admission",
		RelatedEntityID:   admissionID,
	})
	if err != nil {
		return err
	}

	fields := model.JSONMap{
		"admissionId": admissionID,
		"patientId":   patientID,
		"patientName": patientName,
		"doctorId":    doctorID,
	}
	for _, role := range []model.Role{model.RoleAdmin, model.RoleNurse} {
		s.hub.BroadcastToRole(roleEvent(role, "patient_discharged", fields), role)
	}

	return nil
}

// NotifyProfileUpdated notifies the profile owner; admin dashboards get a
// broadcast.
func (s *Service) NotifyProfileUpdated(ctx context.Context, userID string, role model.Role) error {
	_, err := s.CreateAndPush(ctx, &model.Notification{
		UserID:            userID,
		UserRole:          role,
		Type:              model.NotificationTypeProfile,
		Title:             "Profile Updated",
		Message:           "Your profile details were updated",
		RelatedEntityType: "profile",
		RelatedEntityID:   userID,
	})
	if err != nil {
		return err
	}

	s.hub.BroadcastToRole(roleEvent(model.RoleAdmin, "profile_updated", model.JSONMap{
		"userId": userID,
		"role":   string(role),
	}), model.RoleAdmin)

	return nil
}

// NotifyBillRequested only reaches the admin dashboards; nothing is
// persisted.
func (s *Service) NotifyBillRequested(patientID, patientName, admissionID string) {
	s.hub.BroadcastToRole(roleEvent(model.RoleAdmin, "bill_requested", model.JSONMap{
		"patientId":   patientID,
		"patientName": patientName,
		"admissionId": admissionID,
	}), model.RoleAdmin)
}

// NotifyBillUpdated pushes directly to the patient (no persisted record) and
// broadcasts to admin dashboards.
func (s *Service) NotifyBillUpdated(billID, patientID string, totalAmount float64, status string) {
	s.hub.SendToUser(patientID, &BillUpdate{
		Type:        "bill_updated",
		Event:       "bill_updated",
		BillID:      billID,
		PatientID:   patientID,
		TotalAmount: totalAmount,
		Status:      status,
	})

	s.hub.BroadcastToRole(roleEvent(model.RoleAdmin, "bill_updated", model.JSONMap{
		"billId":      billID,
		"patientId":   patientID,
		"totalAmount": totalAmount,
		"status":      status,
	}), model.RoleAdmin)
}

// NotifySlotUpdate is an unfiltered broadcast to every connection.
func (s *Service) NotifySlotUpdate(update *SlotUpdate) {
	update.Type = "slot_update"
	s.hub.Broadcast(update)
}

// NotifyHealthTip broadcasts a generated tip to every connection.
func (s *Service) NotifyHealthTip(tip *model.HealthTip) {
	s.hub.Broadcast(&HealthTipPush{
		Type:  "health_tip",
		Event: "new_health_tip",
		Tip:   tip,
	})
}

// NotifySystemMessage persists and pushes to a single target user; no
// broadcast.
func (s *Service) NotifySystemMessage(ctx context.Context, userID string, role model.Role, title, message string) error {
	_, err := s.CreateAndPush(ctx, &model.Notification{
		UserID:   userID,
		UserRole: role,
		Type:     model.NotificationTypeSystem,
		Title:    title,
		Message:  message,
	})
	return err
}
