package notifications

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/slotwise/slotwise/internal/appointments"
	"github.com/slotwise/slotwise/jobs"
)

// Queue is the subset of the jobs client the dispatcher needs.
type Queue interface {
	EnqueueAppointmentBooked(ctx context.Context, payload jobs.AppointmentEventPayload) (*asynq.TaskInfo, error)
	EnqueueAppointmentCancelled(ctx context.Context, payload jobs.AppointmentEventPayload) (*asynq.TaskInfo, error)
}

// Dispatcher turns booking lifecycle events into queued notification tasks,
// honouring each client's preferences.
type Dispatcher struct {
	service *Service
	queue   Queue
	logger  *slog.Logger
}

func NewDispatcher(service *Service, queue Queue, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{service: service, queue: queue, logger: logger}
}

// AppointmentBooked enqueues a booking notification unless the client opted out.
func (d *Dispatcher) AppointmentBooked(ctx context.Context, a appointments.Appointment) error {
	return d.dispatch(ctx, a, d.queue.EnqueueAppointmentBooked)
}

// AppointmentCancelled enqueues a cancellation notification unless the client opted out.
func (d *Dispatcher) AppointmentCancelled(ctx context.Context, a appointments.Appointment) error {
	return d.dispatch(ctx, a, d.queue.EnqueueAppointmentCancelled)
}

func (d *Dispatcher) dispatch(ctx context.Context, a appointments.Appointment, enqueue func(context.Context, jobs.AppointmentEventPayload) (*asynq.TaskInfo, error)) error {
	prefs, err := d.service.Preferences(ctx, a.ClientID)
	if err != nil {
		return err
	}
	if !prefs.EmailEnabled && !prefs.SMSEnabled {
		d.logger.Debug("notification suppressed",
			slog.Int64("client_id", a.ClientID),
			slog.String("appointment_id", a.ID))
		return nil
	}
	_, err = enqueue(ctx, jobs.AppointmentEventPayload{
		AppointmentID: a.ID,
		BusinessID:    a.BusinessID,
		ClientID:      a.ClientID,
		StaffID:       a.StaffID,
		StartsAt:      a.StartsAt,
	})
	return err
}

var _ appointments.Notifier = (*Dispatcher)(nil)
