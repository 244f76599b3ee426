package repository

import (
	"errors"
	"time"

	"surgical-clinic-backend/internal/domain/entity"
	domainRepo "surgical-clinic-backend/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type appointmentRepository struct{}

func NewAppointmentRepository() domainRepo.AppointmentRepository {
	return &appointmentRepository{}
}

func (r *appointmentRepository) Create(db *gorm.DB, appointment *entity.Appointment) error {
	return db.Create(appointment).Error
}

func (r *appointmentRepository) FindByID(db *gorm.DB, id int64) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.Preload("Patient").Where("id = ?", id).First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(db *gorm.DB, appointment *entity.Appointment) error {
	return db.Save(appointment).Error
}

func (r *appointmentRepository) FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.Where("patient_id = ?", patientID).
		Order("scheduled_at DESC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindByDoctorAndDay(db *gorm.DB, doctorID uuid.UUID, day time.Time) ([]entity.Appointment, error) {
	dayStart := day.Truncate(24 * time.Hour)
	dayEnd := dayStart.Add(24 * time.Hour)

	var appointments []entity.Appointment
	err := db.Preload("Patient").
		Where("doctor_id = ? AND scheduled_at >= ? AND scheduled_at < ?", doctorID, dayStart, dayEnd).
		Order("scheduled_at ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindDueForNoShowSweep(db *gorm.DB, cutoff time.Time) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.Where("status IN ? AND checked_in_at IS NULL AND scheduled_at <= ?",
		[]entity.AppointmentStatus{entity.AppointmentStatusPending, entity.AppointmentStatusScheduled},
		cutoff).
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}
