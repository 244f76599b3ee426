package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ConsultationStatus represents the status of a consultation
type ConsultationStatus string

const (
	ConsultationStatusInProgress ConsultationStatus = "in_progress"
	ConsultationStatusCompleted  ConsultationStatus = "completed"
)

// Consultation is the clinical note a doctor writes during a visit. While in
// progress it is a mutable draft; concurrent saves (two browser tabs, a slow
// retry racing a newer save) are detected through the version token.
type Consultation struct {
	ID             uuid.UUID          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	AppointmentID  int64              `gorm:"not null;uniqueIndex" json:"appointment_id"`
	PatientID      uuid.UUID          `gorm:"type:uuid;not null;index" json:"patient_id"`
	DoctorID       uuid.UUID          `gorm:"type:uuid;not null;index" json:"doctor_id"`
	Status         ConsultationStatus `gorm:"type:varchar(20);not null;default:'in_progress';index" json:"status"`
	Subjective     string             `gorm:"type:text" json:"subjective,omitempty"`
	Examination    string             `gorm:"type:text" json:"examination,omitempty"`
	Assessment     string             `gorm:"type:text" json:"assessment,omitempty"`
	Recommendation string             `gorm:"type:text" json:"recommendation,omitempty"`
	VersionToken   string             `gorm:"type:varchar(36);not null" json:"version_token"`
	CreatedAt      time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time          `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Appointment Appointment `gorm:"foreignKey:AppointmentID" json:"appointment,omitempty"`
	Patient     Patient     `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor      User        `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
}

func (Consultation) TableName() string {
	return "consultations"
}

// ConsultationPatch carries the draft fields of one save. Nil members are
// left unchanged.
type ConsultationPatch struct {
	Subjective     *string
	Examination    *string
	Assessment     *string
	Recommendation *string
}

// ApplyDraft applies patch under optimistic concurrency. An empty incoming
// token (first save) proceeds unconditionally; a stale token fails without
// mutating the record. Each successful save mints a new token, so no lock is
// held between read and write and conflicts are detected rather than prevented.
func (c *Consultation) ApplyDraft(incomingToken string, patch ConsultationPatch) error {
	if c.Status != ConsultationStatusInProgress {
		return fmt.Errorf("%w: consultation is %s", ErrInvalidState, c.Status)
	}
	if incomingToken != "" && incomingToken != c.VersionToken {
		return fmt.Errorf("%w: consultation draft", ErrVersionConflict)
	}

	if patch.Subjective != nil {
		c.Subjective = *patch.Subjective
	}
	if patch.Examination != nil {
		c.Examination = *patch.Examination
	}
	if patch.Assessment != nil {
		c.Assessment = *patch.Assessment
	}
	if patch.Recommendation != nil {
		c.Recommendation = *patch.Recommendation
	}

	c.VersionToken = uuid.New().String()
	return nil
}

// Complete finalizes the consultation. A completed consultation can no longer
// be drafted and becomes eligible as the origin of a surgical case.
func (c *Consultation) Complete() error {
	if c.Status == ConsultationStatusCompleted {
		return fmt.Errorf("%w: consultation is already completed", ErrInvalidState)
	}
	c.Status = ConsultationStatusCompleted
	return nil
}
