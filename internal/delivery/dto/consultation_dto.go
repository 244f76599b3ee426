package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type StartConsultationRequest struct {
	AppointmentID int64 `json:"appointment_id" validate:"required,min=1"`
}

type SaveConsultationDraftRequest struct {
	VersionToken   string  `json:"version_token" validate:"omitempty,uuid"`
	Subjective     *string `json:"subjective"`
	Examination    *string `json:"examination"`
	Assessment     *string `json:"assessment"`
	Recommendation *string `json:"recommendation"`
}

// Response DTOs

type ConsultationResponse struct {
	ID             uuid.UUID `json:"id"`
	AppointmentID  int64     `json:"appointment_id"`
	PatientID      uuid.UUID `json:"patient_id"`
	DoctorID       uuid.UUID `json:"doctor_id"`
	Status         string    `json:"status"`
	Subjective     string    `json:"subjective,omitempty"`
	Examination    string    `json:"examination,omitempty"`
	Assessment     string    `json:"assessment,omitempty"`
	Recommendation string    `json:"recommendation,omitempty"`
	VersionToken   string    `json:"version_token"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
