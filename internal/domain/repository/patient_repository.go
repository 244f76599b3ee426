package repository

import (
	"surgical-clinic-backend/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PatientRepository interface {
	Create(db *gorm.DB, patient *entity.Patient) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Patient, error)
	FindByMRN(db *gorm.DB, mrn string) (*entity.Patient, error)
	FindAll(db *gorm.DB, page, limit int) ([]entity.Patient, int64, error)
	Update(db *gorm.DB, patient *entity.Patient) error
}
