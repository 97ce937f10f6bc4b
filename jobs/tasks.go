package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeAppointmentBooked notifies a client about a new booking.
	TaskTypeAppointmentBooked = "notify:appointment_booked"
	// TaskTypeAppointmentCancelled notifies a client about a cancellation.
	TaskTypeAppointmentCancelled = "notify:appointment_cancelled"
	// TaskTypeReminderSweep enqueues reminders for upcoming appointments.
	TaskTypeReminderSweep = "notify:reminder_sweep"
	// TaskTypeSendEmail sends a single transactional email.
	TaskTypeSendEmail = "mail:send"
)

// AppointmentEventPayload describes a booking lifecycle event.
type AppointmentEventPayload struct {
	AppointmentID string    `json:"appointment_id"`
	BusinessID    string    `json:"business_id"`
	ClientID      int64     `json:"client_id"`
	StaffID       int64     `json:"staff_id"`
	StartsAt      time.Time `json:"starts_at"`
}

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewAppointmentBookedTask constructs a booking notification task.
func NewAppointmentBookedTask(payload AppointmentEventPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeAppointmentBooked, data), nil
}

// NewAppointmentCancelledTask constructs a cancellation notification task.
func NewAppointmentCancelledTask(payload AppointmentEventPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeAppointmentCancelled, data), nil
}

// NewReminderSweepTask constructs the periodic reminder task.
func NewReminderSweepTask() *asynq.Task {
	return asynq.NewTask(TaskTypeReminderSweep, nil)
}

// NewSendEmailTask constructs an email task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}

// HandleSendEmailTask processes TaskTypeSendEmail tasks.
func HandleSendEmailTask(ctx context.Context, t *asynq.Task) error {
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	// Placeholder: integrate with the SMTP relay once provisioned.
	slog.Info("send email", slog.String("to", payload.To), slog.String("subject", payload.Subject))
	return nil
}
