package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CaseStatus represents the status of a surgical case
type CaseStatus string

const (
	CaseStatusDraft              CaseStatus = "draft"
	CaseStatusPlanning           CaseStatus = "planning"
	CaseStatusReadyForScheduling CaseStatus = "ready_for_scheduling"
	CaseStatusScheduled          CaseStatus = "scheduled"
	CaseStatusInPrep             CaseStatus = "in_prep"
	CaseStatusInTheater          CaseStatus = "in_theater"
	CaseStatusRecovery           CaseStatus = "recovery"
	CaseStatusCompleted          CaseStatus = "completed"
	CaseStatusCancelled          CaseStatus = "cancelled"
)

// CaseUrgency represents how urgently the procedure is needed
type CaseUrgency string

const (
	CaseUrgencyElective CaseUrgency = "elective"
	CaseUrgencyUrgent   CaseUrgency = "urgent"
	CaseUrgencyEmergent CaseUrgency = "emergent"
)

// caseTransitions is the single authoritative transition table for case
// status. Completed and cancelled are terminal. The readiness gate for
// ready_for_scheduling is a business rule enforced by the use case layer,
// not by this table.
var caseTransitions = map[CaseStatus][]CaseStatus{
	CaseStatusDraft:              {CaseStatusPlanning, CaseStatusCancelled},
	CaseStatusPlanning:           {CaseStatusReadyForScheduling, CaseStatusCancelled},
	CaseStatusReadyForScheduling: {CaseStatusScheduled, CaseStatusPlanning, CaseStatusCancelled},
	CaseStatusScheduled:          {CaseStatusInPrep, CaseStatusCancelled},
	CaseStatusInPrep:             {CaseStatusInTheater, CaseStatusCancelled},
	CaseStatusInTheater:          {CaseStatusRecovery},
	CaseStatusRecovery:           {CaseStatusCompleted},
	CaseStatusCompleted:          {},
	CaseStatusCancelled:          {},
}

// CanTransitionCase reports whether current -> target is in the transition table.
func CanTransitionCase(current, target CaseStatus) bool {
	for _, allowed := range caseTransitions[current] {
		if allowed == target {
			return true
		}
	}
	return false
}

// SurgicalCase tracks a patient's journey from surgical consultation through
// theater and recovery.
type SurgicalCase struct {
	ID               string      `gorm:"type:varchar(30);primaryKey" json:"id"`
	PatientID        uuid.UUID   `gorm:"type:uuid;not null;index" json:"patient_id"`
	PrimarySurgeonID uuid.UUID   `gorm:"type:uuid;not null;index" json:"primary_surgeon_id"`
	ConsultationID   *uuid.UUID  `gorm:"type:uuid;index" json:"consultation_id,omitempty"`
	Status           CaseStatus  `gorm:"type:varchar(30);not null;default:'draft';index" json:"status"`
	Urgency          CaseUrgency `gorm:"type:varchar(20);not null;default:'elective'" json:"urgency"`
	Diagnosis        string      `gorm:"type:text;not null" json:"diagnosis"`
	ProcedureName    string      `gorm:"type:varchar(255);not null" json:"procedure_name"`

	Timeline OperativeTimeline `gorm:"embedded" json:"timeline"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Patient Patient         `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Surgeon User            `gorm:"foreignKey:PrimarySurgeonID" json:"surgeon,omitempty"`
	Plan    *CasePlan       `gorm:"foreignKey:SurgicalCaseID" json:"plan,omitempty"`
	Booking *TheaterBooking `gorm:"foreignKey:SurgicalCaseID" json:"booking,omitempty"`
}

func (SurgicalCase) TableName() string {
	return "surgical_cases"
}

// TransitionTo moves the case to target if the transition table allows it.
func (c *SurgicalCase) TransitionTo(target CaseStatus) error {
	if !CanTransitionCase(c.Status, target) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, c.Status, target)
	}
	c.Status = target
	return nil
}

// IsTerminal reports whether no further transitions are possible.
func (c *SurgicalCase) IsTerminal() bool {
	return len(caseTransitions[c.Status]) == 0
}
