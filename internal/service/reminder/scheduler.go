package reminder

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/carepulse/hms-api/internal/email"
	"github.com/carepulse/hms-api/internal/model"
	"github.com/carepulse/hms-api/internal/repository"
	"github.com/carepulse/hms-api/internal/service/notifier"
	"github.com/carepulse/hms-api/pkg/logger"
	"github.com/carepulse/hms-api/pkg/metrics"
)

// Kind names a reminder window.
type Kind string

const (
	Kind24h Kind = "24h"
	Kind1h  Kind = "1h"
)

const DefaultInterval = 5 * time.Minute

// Reminder windows in hours before the appointment. Wide and overlapping on
// purpose: together with the dedupe ledger they make a coarse 5-minute tick
// safe across restarts.
const (
	window24hMin = 12.0
	window24hMax = 48.0
	window1hMin  = 0.5
	window1hMax  = 2.0
)

// DedupeKey is the idempotency key embedded in a reminder's metadata. At most
// one notification carrying it may ever exist per appointment and kind.
func DedupeKey(appointmentID uuid.UUID, kind Kind) string {
	return fmt.Sprintf("reminder::%s::%s", appointmentID, kind)
}

// Scheduler periodically scans upcoming appointments and dispatches
// idempotent 24-hour and 1-hour reminders. It keeps no state of its own: the
// notification ledger is the dedupe record, so restarts neither miss nor
// duplicate reminders.
type Scheduler struct {
	appointments  repository.AppointmentRepository
	doctors       repository.DoctorRepository
	patients      repository.PatientRepository
	notifications repository.NotificationRepository
	notifier      *notifier.Service
	email         email.Service

	roster   *cache.Cache
	interval time.Duration
	loc      *time.Location
	nowFn    func() time.Time

	logger  *logger.Logger
	metrics *metrics.Metrics

	cancel context.CancelFunc
	done   chan struct{}
}

type Config struct {
	Interval time.Duration
	Location *time.Location
}

func NewScheduler(
	appointments repository.AppointmentRepository,
	doctors repository.DoctorRepository,
	patients repository.PatientRepository,
	notifications repository.NotificationRepository,
	notifSvc *notifier.Service,
	emailSvc email.Service,
	cfg Config,
	logger *logger.Logger,
	m *metrics.Metrics,
) *Scheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}

	return &Scheduler{
		appointments:  appointments,
		doctors:       doctors,
		patients:      patients,
		notifications: notifications,
		notifier:      notifSvc,
		email:         emailSvc,
		roster:        cache.New(cfg.Interval, 2*cfg.Interval),
		interval:      cfg.Interval,
		loc:           cfg.Location,
		nowFn:         time.Now,
		logger:        logger,
		metrics:       m,
	}
}

// Start launches the scheduler goroutine: one immediate scan, then one per
// interval until Stop or context cancellation.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.run(ctx)
}

// Stop cancels future ticks and waits for any in-flight scan to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("starting reminder scheduler", "interval", s.interval.String())
	s.scan(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down reminder scheduler")
			return
		case <-ticker.C:
			s.scan(ctx)
		}
	}
}

// scan is the per-tick error boundary: a failed scan is logged and the ticker
// keeps firing.
func (s *Scheduler) scan(ctx context.Context) {
	if err := s.Scan(ctx); err != nil {
		s.metrics.ReminderScanErrors.Inc()
		s.logger.Error(err, "reminder scan failed")
	}
}

// Scan walks all non-terminal appointments and dispatches any due reminders.
// An error on one appointment aborts the remainder of the scan; the next tick
// retries, and the dedupe ledger keeps retries idempotent.
func (s *Scheduler) Scan(ctx context.Context) error {
	timer := prometheus.NewTimer(s.metrics.ReminderScanLatency)
	defer timer.ObserveDuration()

	appointments, err := s.appointments.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list appointments: %w", err)
	}

	if err := s.refreshRoster(ctx); err != nil {
		return fmt.Errorf("failed to refresh doctor roster: %w", err)
	}

	now := s.nowFn()
	for _, apt := range appointments {
		if apt.Status.Terminal() {
			continue
		}

		start, err := apt.StartTime(s.loc)
		if err != nil {
			// Unparseable calendar fields never block the scan.
			continue
		}

		hoursUntil := start.Sub(now).Hours()

		if hoursUntil >= window24hMin && hoursUntil <= window24hMax {
			if err := s.remind(ctx, apt, Kind24h); err != nil {
				return err
			}
		}
		if hoursUntil >= window1hMin && hoursUntil <= window1hMax {
			if err := s.remind(ctx, apt, Kind1h); err != nil {
				return err
			}
		}
	}

	return nil
}

func (s *Scheduler) refreshRoster(ctx context.Context) error {
	doctors, err := s.doctors.List(ctx)
	if err != nil {
		return err
	}
	for _, d := range doctors {
		s.roster.Set(d.ID.String(), d, cache.DefaultExpiration)
	}
	return nil
}

func (s *Scheduler) doctorName(doctorID uuid.UUID) string {
	if v, ok := s.roster.Get(doctorID.String()); ok {
		return v.(*model.Doctor).Name
	}
	return "your doctor"
}

// remind creates the reminder notification unless the recipient's ledger
// already carries its dedupe key.
func (s *Scheduler) remind(ctx context.Context, apt *model.Appointment, kind Kind) error {
	key := DedupeKey(apt.ID, kind)
	recipient := apt.RecipientKey()

	existing, err := s.notifications.ListForUser(ctx, recipient)
	if err != nil {
		return fmt.Errorf("failed to check reminder ledger: %w", err)
	}
	for _, n := range existing {
		if strings.Contains(n.Metadata, key) {
			return nil
		}
	}

	doctorName := s.doctorName(apt.DoctorID)

	var title, message string
	switch kind {
	case Kind24h:
		title = "Appointment Reminder"
		message = fmt.Sprintf("Reminder: your appointment with Dr. %s is on %s at %s", doctorName, apt.AppointmentDate, apt.TimeSlot)
	case Kind1h:
		title = "Appointment Starting Soon"
		message = fmt.Sprintf("Reminder: your appointment with Dr. %s starts at %s today", doctorName, apt.TimeSlot)
	}

	metadata, err := json.Marshal(model.JSONMap{
		"reminderKey":     key,
		"appointmentId":   apt.ID.String(),
		"doctorName":      doctorName,
		"appointmentDate": apt.AppointmentDate,
		"timeSlot":        apt.TimeSlot,
		"department":      apt.Department,
		"location":        apt.Location,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal reminder metadata: %w", err)
	}

	_, err = s.notifier.CreateAndPush(ctx, &model.Notification{
		UserID:            recipient,
		UserRole:          model.RolePatient,
		Type:              model.NotificationTypeAppointment,
		Title:             title,
		Message:           message,
		RelatedEntityType: "appointment",
		RelatedEntityID:   apt.ID.String(),
		Metadata:          string(metadata),
	})
	if err != nil {
		return fmt.Errorf("failed to create %s reminder for appointment %s: %w", kind, apt.ID, err)
	}
	s.metrics.RemindersSent.WithLabelValues(string(kind)).Inc()

	s.sendEmailCopy(ctx, apt, title, message)
	return nil
}

// sendEmailCopy mails the reminder to the patient when an address is on file.
// Strictly best-effort.
func (s *Scheduler) sendEmailCopy(ctx context.Context, apt *model.Appointment, subject, body string) {
	if s.email == nil || apt.PatientID == nil {
		return
	}

	patient, err := s.patients.Get(ctx, *apt.PatientID)
	if err != nil || patient.Email == "" {
		return
	}
	if err := s.email.SendCustom(ctx, patient.Email, subject, body); err != nil {
		s.logger.Error(err, "failed to send reminder email", "patient_id", patient.ID.String())
	}
}
