package repository

import (
	"surgical-clinic-backend/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SurgicalCaseRepository interface {
	Create(db *gorm.DB, surgicalCase *entity.SurgicalCase) error
	FindByID(db *gorm.DB, id string) (*entity.SurgicalCase, error)
	Update(db *gorm.DB, surgicalCase *entity.SurgicalCase) error
	FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.SurgicalCase, error)
	FindByStatus(db *gorm.DB, status entity.CaseStatus) ([]entity.SurgicalCase, error)
	SavePlan(db *gorm.DB, plan *entity.CasePlan) error
	FindPlan(db *gorm.DB, surgicalCaseID string) (*entity.CasePlan, error)
}
