package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/slotwise/slotwise/internal/jobs"
	"github.com/slotwise/slotwise/jobs"
)

// reminderWindow is how far ahead the sweep looks for upcoming appointments.
const reminderWindow = 24 * time.Hour

// DeliveryJob processes queued notification tasks: it resolves the client's
// address, checks their preferences and hands the message to the mail queue.
type DeliveryJob struct {
	pool    *pgxpool.Pool
	service *Service
	mail    MailQueue
	logger  *slog.Logger
	metrics *jobmetrics.Metrics
}

func NewDeliveryJob(pool *pgxpool.Pool, service *Service, mail MailQueue, logger *slog.Logger) *DeliveryJob {
	return &DeliveryJob{pool: pool, service: service, mail: mail, logger: logger, metrics: jobmetrics.NewMetrics(nil)}
}

// HandleBooked processes appointment-booked tasks.
func (j *DeliveryJob) HandleBooked(ctx context.Context, t *asynq.Task) error {
	tracker := j.metrics.Track("notify_booked")
	return tracker.End(j.deliverEvent(ctx, t, "Your appointment is confirmed",
		"Your appointment on %s has been booked."))
}

// HandleCancelled processes appointment-cancelled tasks.
func (j *DeliveryJob) HandleCancelled(ctx context.Context, t *asynq.Task) error {
	tracker := j.metrics.Track("notify_cancelled")
	return tracker.End(j.deliverEvent(ctx, t, "Your appointment was cancelled",
		"Your appointment on %s has been cancelled."))
}

func (j *DeliveryJob) deliverEvent(ctx context.Context, t *asynq.Task, subject, bodyFormat string) error {
	var payload jobs.AppointmentEventPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	email, err := j.clientEmail(ctx, payload.ClientID)
	if err != nil {
		j.logger.Warn("resolve client email",
			slog.Int64("client_id", payload.ClientID), slog.Any("error", err))
		return err
	}

	prefs, err := j.service.Preferences(ctx, payload.ClientID)
	if err != nil {
		return err
	}
	if !prefs.EmailEnabled {
		return nil
	}

	_, err = j.mail.EnqueueSendEmail(ctx, jobs.SendEmailPayload{
		To:      email,
		Subject: subject,
		Body:    fmt.Sprintf(bodyFormat, payload.StartsAt.Format(time.RFC1123)),
	})
	return err
}

// HandleReminderSweep enqueues reminder emails for appointments starting
// within the reminder window. Runs from the cron scheduler.
func (j *DeliveryJob) HandleReminderSweep(ctx context.Context, _ *asynq.Task) error {
	tracker := j.metrics.Track("reminder_sweep")
	return tracker.End(j.sweepReminders(ctx))
}

func (j *DeliveryJob) sweepReminders(ctx context.Context) error {
	rows, err := j.pool.Query(ctx,
		`SELECT a.id, a.client_id, a.starts_at, u.email
		 FROM appointments a
		 JOIN users u ON u.id = a.client_id
		 WHERE a.status = 'booked'
		   AND a.starts_at BETWEEN NOW() AND NOW() + $1::interval`,
		fmt.Sprintf("%d hours", int(reminderWindow.Hours())))
	if err != nil {
		return err
	}
	defer rows.Close()

	type upcoming struct {
		id       string
		clientID int64
		startsAt time.Time
		email    string
	}
	var pending []upcoming
	for rows.Next() {
		var u upcoming
		if err := rows.Scan(&u.id, &u.clientID, &u.startsAt, &u.email); err != nil {
			return err
		}
		pending = append(pending, u)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, u := range pending {
		prefs, err := j.service.Preferences(ctx, u.clientID)
		if err != nil {
			j.logger.Warn("reminder preferences",
				slog.Int64("client_id", u.clientID), slog.Any("error", err))
			continue
		}
		if !prefs.EmailEnabled || !prefs.RemindersEnabled {
			continue
		}
		if _, err := j.mail.EnqueueSendEmail(ctx, jobs.SendEmailPayload{
			To:      u.email,
			Subject: "Appointment reminder",
			Body:    fmt.Sprintf("Reminder: your appointment starts at %s.", u.startsAt.Format(time.RFC1123)),
		}); err != nil {
			j.logger.Warn("enqueue reminder",
				slog.String("appointment_id", u.id), slog.Any("error", err))
		}
	}
	return nil
}

func (j *DeliveryJob) clientEmail(ctx context.Context, clientID int64) (string, error) {
	var email string
	err := j.pool.QueryRow(ctx, `SELECT email FROM users WHERE id = $1`, clientID).Scan(&email)
	return email, err
}
