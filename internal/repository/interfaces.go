package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/carepulse/hms-api/internal/model"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *model.Notification) error
	ListForUser(ctx context.Context, userID string) ([]*model.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID, userID string) error
}

type AppointmentRepository interface {
	Create(ctx context.Context, appointment *model.Appointment) error
	Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	Update(ctx context.Context, appointment *model.Appointment) error
	List(ctx context.Context) ([]*model.Appointment, error)
}

type DoctorRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
	List(ctx context.Context) ([]*model.Doctor, error)
}

type PatientRepository interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
}

type HealthTipRepository interface {
	Create(ctx context.Context, tip *model.HealthTip) error
	List(ctx context.Context, limit int) ([]*model.HealthTip, error)
}

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID) error
}
