package repository

import (
	"time"

	"surgical-clinic-backend/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(db *gorm.DB, appointment *entity.Appointment) error
	FindByID(db *gorm.DB, id int64) (*entity.Appointment, error)
	Update(db *gorm.DB, appointment *entity.Appointment) error
	FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.Appointment, error)
	FindByDoctorAndDay(db *gorm.DB, doctorID uuid.UUID, day time.Time) ([]entity.Appointment, error)
	// FindDueForNoShowSweep returns appointments still pending or scheduled,
	// not checked-in, whose scheduled time is at or before cutoff.
	FindDueForNoShowSweep(db *gorm.DB, cutoff time.Time) ([]entity.Appointment, error)
}
