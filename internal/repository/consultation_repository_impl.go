package repository

import (
	"errors"

	"surgical-clinic-backend/internal/domain/entity"
	domainRepo "surgical-clinic-backend/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type consultationRepository struct{}

func NewConsultationRepository() domainRepo.ConsultationRepository {
	return &consultationRepository{}
}

func (r *consultationRepository) Create(db *gorm.DB, consultation *entity.Consultation) error {
	return db.Create(consultation).Error
}

func (r *consultationRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Consultation, error) {
	var consultation entity.Consultation
	err := db.Where("id = ?", id).First(&consultation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &consultation, nil
}

func (r *consultationRepository) FindByAppointmentID(db *gorm.DB, appointmentID int64) (*entity.Consultation, error) {
	var consultation entity.Consultation
	err := db.Where("appointment_id = ?", appointmentID).First(&consultation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &consultation, nil
}

func (r *consultationRepository) Update(db *gorm.DB, consultation *entity.Consultation) error {
	return db.Omit("Appointment", "Patient", "Doctor").Save(consultation).Error
}
