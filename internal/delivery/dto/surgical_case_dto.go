package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type CreateSurgicalCaseRequest struct {
	ConsultationID uuid.UUID `json:"consultation_id" validate:"required"`
	Urgency        string    `json:"urgency" validate:"required,oneof=elective urgent emergent"`
	Diagnosis      string    `json:"diagnosis" validate:"required"`
	ProcedureName  string    `json:"procedure_name" validate:"required,max=255"`
}

type SaveCasePlanRequest struct {
	VersionToken     string  `json:"version_token" validate:"omitempty,uuid"`
	ProcedurePlan    *string `json:"procedure_plan"`
	RiskAssessment   *string `json:"risk_assessment"`
	ConsentConfirmed *bool   `json:"consent_confirmed"`
	ImageryReviewed  *bool   `json:"imagery_reviewed"`
	ImplantRequired  *bool   `json:"implant_required"`
	ImplantDetails   *string `json:"implant_details"`
}

type RecordTimelineEventRequest struct {
	Field     string    `json:"field" validate:"required,oneof=wheels_in anesthesia_start incision_time closure_time anesthesia_end wheels_out"`
	Timestamp time.Time `json:"timestamp" validate:"required"`
}

// Response DTOs

type CasePlanResponse struct {
	ProcedurePlan    string   `json:"procedure_plan,omitempty"`
	RiskAssessment   string   `json:"risk_assessment,omitempty"`
	ConsentConfirmed bool     `json:"consent_confirmed"`
	ImageryReviewed  bool     `json:"imagery_reviewed"`
	ImplantRequired  bool     `json:"implant_required"`
	ImplantDetails   string   `json:"implant_details,omitempty"`
	ReadinessStatus  string   `json:"readiness_status"`
	ReadyForSurgery  bool     `json:"ready_for_surgery"`
	MissingItems     []string `json:"missing_items,omitempty"`
	VersionToken     string   `json:"version_token"`
}

type TimelineResponse struct {
	WheelsIn        *time.Time         `json:"wheels_in,omitempty"`
	AnesthesiaStart *time.Time         `json:"anesthesia_start,omitempty"`
	IncisionTime    *time.Time         `json:"incision_time,omitempty"`
	ClosureTime     *time.Time         `json:"closure_time,omitempty"`
	AnesthesiaEnd   *time.Time         `json:"anesthesia_end,omitempty"`
	WheelsOut       *time.Time         `json:"wheels_out,omitempty"`
	Durations       *DurationsResponse `json:"durations,omitempty"`
	MissingItems    []MissingItem      `json:"missing_items,omitempty"`
}

type DurationsResponse struct {
	ORTimeMinutes         *int `json:"or_time_minutes"`
	SurgeryTimeMinutes    *int `json:"surgery_time_minutes"`
	PrepTimeMinutes       *int `json:"prep_time_minutes"`
	CloseOutTimeMinutes   *int `json:"close_out_time_minutes"`
	AnesthesiaTimeMinutes *int `json:"anesthesia_time_minutes"`
}

type MissingItem struct {
	Field string `json:"field"`
	Label string `json:"label"`
}

type SurgicalCaseResponse struct {
	ID               string                  `json:"id"`
	PatientID        uuid.UUID               `json:"patient_id"`
	PrimarySurgeonID uuid.UUID               `json:"primary_surgeon_id"`
	ConsultationID   *uuid.UUID              `json:"consultation_id,omitempty"`
	Status           string                  `json:"status"`
	Urgency          string                  `json:"urgency"`
	Diagnosis        string                  `json:"diagnosis"`
	ProcedureName    string                  `json:"procedure_name"`
	Plan             *CasePlanResponse       `json:"plan,omitempty"`
	Booking          *TheaterBookingResponse `json:"booking,omitempty"`
	Timeline         *TimelineResponse       `json:"timeline,omitempty"`
	CreatedAt        time.Time               `json:"created_at"`
	UpdatedAt        time.Time               `json:"updated_at"`
}

type SurgicalCaseListResponse struct {
	Cases []SurgicalCaseResponse `json:"cases"`
	Total int                    `json:"total"`
}
