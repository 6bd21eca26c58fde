package appointment

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/carepulse/hms-api/internal/model"
	"github.com/carepulse/hms-api/internal/repository"
	"github.com/carepulse/hms-api/internal/service/notifier"
	"github.com/carepulse/hms-api/pkg/logger"
)

type Service struct {
	repo     repository.AppointmentRepository
	doctors  repository.DoctorRepository
	notifSvc *notifier.Service
	logger   *logger.Logger
}

func NewService(repo repository.AppointmentRepository, doctors repository.DoctorRepository, notifSvc *notifier.Service, logger *logger.Logger) *Service {
	return &Service{
		repo:     repo,
		doctors:  doctors,
		notifSvc: notifSvc,
		logger:   logger,
	}
}

func (s *Service) CreateAppointment(ctx context.Context, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	doctor, err := s.doctors.Get(ctx, req.DoctorID)
	if err != nil {
		return nil, fmt.Errorf("invalid doctor: %w", err)
	}

	apt := &model.Appointment{
		DoctorID:        req.DoctorID,
		PatientID:       req.PatientID,
		PatientName:     req.PatientName,
		AppointmentDate: req.AppointmentDate,
		TimeSlot:        req.TimeSlot,
		Status:          model.AppointmentStatusScheduled,
		Department:      req.Department,
		Location:        req.Location,
	}
	if apt.Department == "" {
		apt.Department = doctor.Department
	}

	if err := s.repo.Create(ctx, apt); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	// A notification outage must not fail the booking itself.
	if err := s.notifSvc.NotifyAppointmentCreated(ctx, apt, doctor.Name); err != nil {
		s.logger.Error(err, "failed to send appointment notifications", "appointment_id", apt.ID.String())
	}

	return apt, nil
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return apt, nil
}

func (s *Service) ListAppointments(ctx context.Context) ([]*model.Appointment, error) {
	appointments, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (s *Service) UpdateAppointment(ctx context.Context, id uuid.UUID, req *model.UpdateAppointmentRequest) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}

	if req.AppointmentDate != nil {
		apt.AppointmentDate = *req.AppointmentDate
	}
	if req.TimeSlot != nil {
		apt.TimeSlot = *req.TimeSlot
	}
	if req.Status != nil {
		apt.Status = *req.Status
	}
	if req.Location != nil {
		apt.Location = *req.Location
	}

	if err := s.repo.Update(ctx, apt); err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}

	if err := s.notifSvc.NotifyAppointmentUpdated(ctx, apt); err != nil {
		s.logger.Error(err, "failed to send appointment update notifications", "appointment_id", apt.ID.String())
	}

	return apt, nil
}
