package notifier

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carepulse/hms-api/internal/model"
	"github.com/carepulse/hms-api/pkg/logger"
	"github.com/carepulse/hms-api/pkg/metrics"
)

type unicast struct {
	userID  string
	payload interface{}
}

type roleCast struct {
	role    model.Role
	payload interface{}
}

type fakePusher struct {
	unicasts   []unicast
	broadcasts []interface{}
	roleCasts  []roleCast
}

func (p *fakePusher) SendToUser(userID string, payload interface{}) {
	p.unicasts = append(p.unicasts, unicast{userID: userID, payload: payload})
}

func (p *fakePusher) Broadcast(payload interface{}) {
	p.broadcasts = append(p.broadcasts, payload)
}

func (p *fakePusher) BroadcastToRole(payload interface{}, role model.Role) {
	p.roleCasts = append(p.roleCasts, roleCast{role: role, payload: payload})
}

type fakeNotificationRepo struct {
	created   []*model.Notification
	createErr error
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	if r.createErr != nil {
		return r.createErr
	}
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	n.CreatedAt = time.Now()
	r.created = append(r.created, n)
	return nil
}

func (r *fakeNotificationRepo) ListForUser(_ context.Context, userID string) ([]*model.Notification, error) {
	var out []*model.Notification
	for _, n := range r.created {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) MarkRead(context.Context, uuid.UUID, string) error {
	return nil
}

type fakeBroker struct {
	published []interface{}
	err       error
}

func (b *fakeBroker) Publish(_ context.Context, _ string, message interface{}) error {
	if b.err != nil {
		return b.err
	}
	b.published = append(b.published, message)
	return nil
}

func (b *fakeBroker) Subscribe(context.Context, string) (<-chan []byte, error) {
	return nil, nil
}

func (b *fakeBroker) Close() error { return nil }

func newTestService(pusher *fakePusher, repo *fakeNotificationRepo) *Service {
	l := logger.NewLogger(&logger.Config{
		Level:      logger.ErrorLevel,
		TimeFormat: time.RFC3339,
		Output:     io.Discard,
	})
	return NewService(pusher, repo, nil, l, metrics.NewMetrics("test", prometheus.NewRegistry()))
}

func TestCreateAndPushPersistsThenPushes(t *testing.T) {
	pusher := &fakePusher{}
	repo := &fakeNotificationRepo{}
	svc := newTestService(pusher, repo)

	n, err := svc.CreateAndPush(context.Background(), &model.Notification{
		UserID:   "user-1",
		UserRole: model.RolePatient,
		Type:     model.NotificationTypeSystem,
		Title:    "Hello",
		Message:  "World",
	})
	require.NoError(t, err)

	require.Len(t, repo.created, 1)
	require.Len(t, pusher.unicasts, 1)
	assert.Equal(t, "user-1", pusher.unicasts[0].userID)

	push, ok := pusher.unicasts[0].payload.(*NotificationPush)
	require.True(t, ok)
	assert.Equal(t, "notification", push.Type)
	assert.Equal(t, n, push.Notification)
}

func TestCreateAndPushRequiresRecipient(t *testing.T) {
	pusher := &fakePusher{}
	repo := &fakeNotificationRepo{}
	svc := newTestService(pusher, repo)

	_, err := svc.CreateAndPush(context.Background(), &model.Notification{
		Type:  model.NotificationTypeSystem,
		Title: "No recipient",
	})

	assert.Error(t, err)
	assert.Empty(t, repo.created)
	assert.Empty(t, pusher.unicasts)
}

func TestCreateAndPushSkipsPushOnWriteFailure(t *testing.T) {
	pusher := &fakePusher{}
	repo := &fakeNotificationRepo{createErr: errors.New("db down")}
	svc := newTestService(pusher, repo)

	_, err := svc.CreateAndPush(context.Background(), &model.Notification{
		UserID: "user-1",
		Type:   model.NotificationTypeSystem,
	})

	assert.Error(t, err)
	assert.Empty(t, pusher.unicasts, "live push must not happen when persistence fails")
}

func TestCreateAndPushMirrorsToBroker(t *testing.T) {
	pusher := &fakePusher{}
	repo := &fakeNotificationRepo{}
	broker := &fakeBroker{}
	l := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, TimeFormat: time.RFC3339, Output: io.Discard})
	svc := NewService(pusher, repo, broker, l, metrics.NewMetrics("test", prometheus.NewRegistry()))

	_, err := svc.CreateAndPush(context.Background(), &model.Notification{
		UserID: "user-1",
		Type:   model.NotificationTypeSystem,
	})
	require.NoError(t, err)
	assert.Len(t, broker.published, 1)

	// A broker outage is invisible to the caller.
	broker.err = errors.New("redis down")
	_, err = svc.CreateAndPush(context.Background(), &model.Notification{
		UserID: "user-2",
		Type:   model.NotificationTypeSystem,
	})
	assert.NoError(t, err)
}

func TestNotifyAppointmentCreated(t *testing.T) {
	pusher := &fakePusher{}
	repo := &fakeNotificationRepo{}
	svc := newTestService(pusher, repo)

	patientID := uuid.New()
	apt := &model.Appointment{
		Base:            model.Base{ID: uuid.New()},
		DoctorID:        uuid.New(),
		PatientID:       &patientID,
		PatientName:     "Asha Rao",
		AppointmentDate: "2026-09-15",
		TimeSlot:        "14:30",
		Status:          model.AppointmentStatusScheduled,
		Department:      "Cardiology",
	}

	require.NoError(t, svc.NotifyAppointmentCreated(context.Background(), apt, "Mehta"))

	// Doctor and linked patient each get a durable record.
	require.Len(t, repo.created, 2)
	assert.Equal(t, apt.DoctorID.String(), repo.created[0].UserID)
	assert.Equal(t, model.RoleDoctor, repo.created[0].UserRole)
	assert.Equal(t, patientID.String(), repo.created[1].UserID)
	assert.Equal(t, apt.ID.String(), repo.created[1].RelatedEntityID)

	// The doctor additionally gets the schedule-grid refresh frame.
	var update *AppointmentUpdate
	for _, u := range pusher.unicasts {
		if au, ok := u.payload.(*AppointmentUpdate); ok {
			update = au
			assert.Equal(t, apt.DoctorID.String(), u.userID)
		}
	}
	require.NotNil(t, update)
	assert.Equal(t, "appointment_update", update.Type)
	assert.Equal(t, "created", update.Event)
	assert.Equal(t, apt.ID.String(), update.AppointmentID)

	require.Len(t, pusher.roleCasts, 1)
	assert.Equal(t, model.RoleAdmin, pusher.roleCasts[0].role)
	frame := pusher.roleCasts[0].payload.(model.JSONMap)
	assert.Equal(t, "admin_notification", frame["type"])
	assert.Equal(t, "appointment_created", frame["event"])
	assert.Equal(t, apt.ID.String(), frame["appointmentId"])
}

func TestNotifyAppointmentCreatedWithoutLinkedPatient(t *testing.T) {
	pusher := &fakePusher{}
	repo := &fakeNotificationRepo{}
	svc := newTestService(pusher, repo)

	apt := &model.Appointment{
		Base:            model.Base{ID: uuid.New()},
		DoctorID:        uuid.New(),
		PatientName:     "Walk-in",
		AppointmentDate: "2026-09-15",
		TimeSlot:        "10:00",
	}

	require.NoError(t, svc.NotifyAppointmentCreated(context.Background(), apt, "Mehta"))

	require.Len(t, repo.created, 1)
	assert.Equal(t, apt.DoctorID.String(), repo.created[0].UserID)
}

func TestNotifyPatientAdmissionFansOutToThreeRoles(t *testing.T) {
	pusher := &fakePusher{}
	repo := &fakeNotificationRepo{}
	svc := newTestService(pusher, repo)

	doctorID := uuid.New().String()
	err := svc.NotifyPatientAdmission(context.Background(), "patient-1", "Asha Rao", doctorID, "adm-42")
	require.NoError(t, err)

	require.Len(t, repo.created, 1)
	assert.Equal(t, doctorID, repo.created[0].UserID)
	assert.Equal(t, model.NotificationTypeAdmission, repo.created[0].Type)
	assert.Equal(t, "adm-42", repo.created[0].RelatedEntityID)

	require.Len(t, pusher.roleCasts, 3)
	envelopes := map[model.Role]string{}
	for _, rc := range pusher.roleCasts {
		frame := rc.payload.(model.JSONMap)
		envelopes[rc.role] = frame["type"].(string)
		assert.Equal(t, "patient_admitted", frame["event"])
		assert.Equal(t, "adm-42", frame["admissionId"])
	}
	assert.Equal(t, "admin_notification", envelopes[model.RoleAdmin])
	assert.Equal(t, "nurse_notification", envelopes[model.RoleNurse])
	assert.Equal(t, "opd_notification", envelopes[model.RoleOPDManager])
}

func TestNotifyPatientDischargeFansOutToTwoRoles(t *testing.T) {
	pusher := &fakePusher{}
	repo := &fakeNotificationRepo{}
	svc := newTestService(pusher, repo)

	err := svc.NotifyPatientDischarge(context.Background(), "patient-1", "Asha Rao", uuid.New().String(), "adm-42")
	require.NoError(t, err)

	require.Len(t, pusher.roleCasts, 2)
	roles := []model.Role{pusher.roleCasts[0].role, pusher.roleCasts[1].role}
	assert.ElementsMatch(t, []model.Role{model.RoleAdmin, model.RoleNurse}, roles)
}

func TestNotifyScheduleUpdatedReachesAdminAndOPD(t *testing.T) {
	pusher := &fakePusher{}
	repo := &fakeNotificationRepo{}
	svc := newTestService(pusher, repo)

	doctorID := uuid.New().String()
	require.NoError(t, svc.NotifyScheduleUpdated(context.Background(), doctorID, "2026-09-15"))

	require.Len(t, repo.created, 1)
	assert.Equal(t, model.NotificationTypeSchedule, repo.created[0].Type)

	require.Len(t, pusher.roleCasts, 2)
	roles := []model.Role{pusher.roleCasts[0].role, pusher.roleCasts[1].role}
	assert.ElementsMatch(t, []model.Role{model.RoleAdmin, model.RoleOPDManager}, roles)
}

func TestNotifyBillRequestedPersistsNothing(t *testing.T) {
	pusher := &fakePusher{}
	repo := &fakeNotificationRepo{}
	svc := newTestService(pusher, repo)

	svc.NotifyBillRequested("patient-1", "Asha Rao", "adm-42")

	assert.Empty(t, repo.created)
	require.Len(t, pusher.roleCasts, 1)
	assert.Equal(t, model.RoleAdmin, pusher.roleCasts[0].role)
}

func TestNotifyBillUpdatedPushesDirectlyToPatient(t *testing.T) {
	pusher := &fakePusher{}
	repo := &fakeNotificationRepo{}
	svc := newTestService(pusher, repo)

	svc.NotifyBillUpdated("bill-7", "patient-1", 1250.50, "paid")

	assert.Empty(t, repo.created)
	require.Len(t, pusher.unicasts, 1)
	bill := pusher.unicasts[0].payload.(*BillUpdate)
	assert.Equal(t, "bill_updated", bill.Type)
	assert.Equal(t, 1250.50, bill.TotalAmount)
	require.Len(t, pusher.roleCasts, 1)
	assert.Equal(t, model.RoleAdmin, pusher.roleCasts[0].role)
}

func TestNotifySlotUpdateBroadcastsWithEnvelopeType(t *testing.T) {
	pusher := &fakePusher{}
	repo := &fakeNotificationRepo{}
	svc := newTestService(pusher, repo)

	svc.NotifySlotUpdate(&SlotUpdate{
		SlotEvent: SlotEventBooked,
		DoctorID:  "doctor-1",
		Date:      "2026-09-15",
		StartTime: "14:30",
	})

	require.Len(t, pusher.broadcasts, 1)
	update := pusher.broadcasts[0].(*SlotUpdate)
	assert.Equal(t, "slot_update", update.Type)
	assert.Equal(t, SlotEventBooked, update.SlotEvent)
}

func TestNotifySystemMessageIsUnicastOnly(t *testing.T) {
	pusher := &fakePusher{}
	repo := &fakeNotificationRepo{}
	svc := newTestService(pusher, repo)

	err := svc.NotifySystemMessage(context.Background(), "user-1", model.RoleTechnician, "Maintenance", "Lab systems offline tonight")
	require.NoError(t, err)

	require.Len(t, repo.created, 1)
	assert.Equal(t, model.NotificationTypeSystem, repo.created[0].Type)
	assert.Empty(t, pusher.broadcasts)
	assert.Empty(t, pusher.roleCasts)
}
