package notifications

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotwise/slotwise/internal/appointments"
	"github.com/slotwise/slotwise/internal/shared"
	"github.com/slotwise/slotwise/jobs"
)

type memoryPrefs struct {
	prefs map[int64]Preference
}

func (r *memoryPrefs) Get(_ context.Context, userID int64) (*Preference, error) {
	if p, ok := r.prefs[userID]; ok {
		return &p, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memoryPrefs) Upsert(_ context.Context, p *Preference) error {
	if r.prefs == nil {
		r.prefs = map[int64]Preference{}
	}
	r.prefs[p.UserID] = *p
	return nil
}

type recordingQueue struct {
	booked    []jobs.AppointmentEventPayload
	cancelled []jobs.AppointmentEventPayload
}

func (q *recordingQueue) EnqueueAppointmentBooked(_ context.Context, p jobs.AppointmentEventPayload) (*asynq.TaskInfo, error) {
	q.booked = append(q.booked, p)
	return &asynq.TaskInfo{}, nil
}

func (q *recordingQueue) EnqueueAppointmentCancelled(_ context.Context, p jobs.AppointmentEventPayload) (*asynq.TaskInfo, error) {
	q.cancelled = append(q.cancelled, p)
	return &asynq.TaskInfo{}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDispatcherEnqueuesByDefault(t *testing.T) {
	queue := &recordingQueue{}
	d := NewDispatcher(NewService(&memoryPrefs{}), queue, discardLogger())

	err := d.AppointmentBooked(context.Background(), appointments.Appointment{
		ID: "apt-1", BusinessID: "biz-1", ClientID: 7, StaffID: 11,
	})
	require.NoError(t, err)
	require.Len(t, queue.booked, 1)
	assert.Equal(t, "apt-1", queue.booked[0].AppointmentID)
}

func TestDispatcherHonoursOptOut(t *testing.T) {
	prefs := &memoryPrefs{prefs: map[int64]Preference{
		7: {UserID: 7, EmailEnabled: false, SMSEnabled: false},
	}}
	queue := &recordingQueue{}
	d := NewDispatcher(NewService(prefs), queue, discardLogger())

	err := d.AppointmentCancelled(context.Background(), appointments.Appointment{
		ID: "apt-1", BusinessID: "biz-1", ClientID: 7,
	})
	require.NoError(t, err)
	assert.Empty(t, queue.cancelled, "opted-out clients receive nothing")
}

func TestPreferencesDefaultWhenUnsaved(t *testing.T) {
	svc := NewService(&memoryPrefs{})
	prefs, err := svc.Preferences(context.Background(), 42)
	require.NoError(t, err)
	assert.True(t, prefs.EmailEnabled)
	assert.True(t, prefs.RemindersEnabled)
	assert.False(t, prefs.SMSEnabled)
}
