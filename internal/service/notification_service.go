package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Notification event types published after a successful transaction commit.
const (
	EventAppointmentBooked  = "appointment.booked"
	EventAppointmentCheckIn = "appointment.checked_in"
	EventAppointmentNoShow  = "appointment.no_show"
	EventBookingLocked      = "theater_booking.locked"
	EventBookingConfirmed   = "theater_booking.confirmed"
	EventCaseStatusChanged  = "surgical_case.status_changed"
	EventConsultationDone   = "consultation.completed"
)

const (
	notificationChannel = "clinic:events"
	publishTimeout      = 5 * time.Second
)

// NotificationService publishes domain events to Redis for downstream
// consumers (email, SMS, dashboards). Publishing is fire-and-forget: a failed
// publish is logged, never propagated, and never rolls anything back.
type NotificationService struct {
	redisClient *redis.Client
	log         *logrus.Logger
}

func NewNotificationService(redisClient *redis.Client, log *logrus.Logger) *NotificationService {
	return &NotificationService{
		redisClient: redisClient,
		log:         log,
	}
}

// Publish emits one event. Call only after the owning transaction committed.
func (s *NotificationService) Publish(eventType string, payload map[string]interface{}) {
	body := map[string]interface{}{
		"type":    eventType,
		"payload": payload,
		"at":      time.Now().UTC(),
	}

	data, err := json.Marshal(body)
	if err != nil {
		s.log.Warnf("Failed to marshal notification %s: %+v", eventType, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := s.redisClient.Publish(ctx, notificationChannel, data).Err(); err != nil {
		s.log.Warnf("Failed to publish notification %s (non-fatal): %+v", eventType, err)
	}
}
