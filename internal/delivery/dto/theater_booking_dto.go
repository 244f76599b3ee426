package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type LockSlotRequest struct {
	SurgicalCaseID string    `json:"surgical_case_id" validate:"required"`
	TheaterID      int       `json:"theater_id" validate:"required,min=1"`
	StartTime      time.Time `json:"start_time" validate:"required"`
	EndTime        time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
}

// Response DTOs

type TheaterBookingResponse struct {
	ID             int64      `json:"id"`
	SurgicalCaseID string     `json:"surgical_case_id"`
	TheaterID      int        `json:"theater_id"`
	StartTime      time.Time  `json:"start_time"`
	EndTime        time.Time  `json:"end_time"`
	Status         string     `json:"status"`
	LockedBy       uuid.UUID  `json:"locked_by"`
	LockedAt       time.Time  `json:"locked_at"`
	LockExpiresAt  time.Time  `json:"lock_expires_at"`
	ConfirmedBy    *uuid.UUID `json:"confirmed_by,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
