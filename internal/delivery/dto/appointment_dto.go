package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type BookAppointmentRequest struct {
	PatientID   uuid.UUID `json:"patient_id" validate:"required"`
	DoctorID    uuid.UUID `json:"doctor_id" validate:"required"`
	ScheduledAt time.Time `json:"scheduled_at" validate:"required"`
	Type        string    `json:"type" validate:"required,oneof=consultation follow_up pre_op post_op"`
}

type CheckInRequest struct {
	// CheckedInAt is optional; the server clock is used when omitted.
	CheckedInAt *time.Time `json:"checked_in_at"`
}

type MarkNoShowRequest struct {
	Reason string `json:"reason" validate:"required,oneof=manual patient_called"`
	Notes  string `json:"notes" validate:"omitempty,max=1000"`
}

// Response DTOs

type CheckInInfoResponse struct {
	CheckedInAt   time.Time `json:"checked_in_at"`
	CheckedInBy   uuid.UUID `json:"checked_in_by"`
	IsLate        bool      `json:"is_late"`
	LateByMinutes int       `json:"late_by_minutes"`
}

type NoShowInfoResponse struct {
	NoShowAt time.Time `json:"no_show_at"`
	Reason   string    `json:"reason"`
	Notes    string    `json:"notes,omitempty"`
}

type AppointmentResponse struct {
	ID          int64                `json:"id"`
	PatientID   uuid.UUID            `json:"patient_id"`
	DoctorID    uuid.UUID            `json:"doctor_id"`
	ScheduledAt time.Time            `json:"scheduled_at"`
	Type        string               `json:"type"`
	Status      string               `json:"status"`
	CheckIn     *CheckInInfoResponse `json:"check_in,omitempty"`
	NoShow      *NoShowInfoResponse  `json:"no_show,omitempty"`
	Patient     *PatientResponse     `json:"patient,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}
