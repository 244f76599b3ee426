package entity

import (
	"time"

	"github.com/google/uuid"
)

// Patient represents a clinical patient record. Patients are not system
// users; staff act on their behalf.
type Patient struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	MRN         string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"mrn"`
	FullName    string    `gorm:"type:varchar(255);not null" json:"full_name"`
	DateOfBirth time.Time `gorm:"type:date;not null" json:"date_of_birth"`
	Gender      string    `gorm:"type:char(1);not null" json:"gender"`
	PhoneNumber string    `gorm:"type:varchar(20);index" json:"phone_number,omitempty"`
	Address     string    `gorm:"type:text" json:"address,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Appointments  []Appointment  `gorm:"foreignKey:PatientID" json:"appointments,omitempty"`
	SurgicalCases []SurgicalCase `gorm:"foreignKey:PatientID" json:"surgical_cases,omitempty"`
}

func (Patient) TableName() string {
	return "patients"
}

// Gender constants
const (
	GenderMale   = "M"
	GenderFemale = "F"
)
