package repository

import (
	"errors"

	"surgical-clinic-backend/internal/domain/entity"
	domainRepo "surgical-clinic-backend/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type surgicalCaseRepository struct{}

func NewSurgicalCaseRepository() domainRepo.SurgicalCaseRepository {
	return &surgicalCaseRepository{}
}

func (r *surgicalCaseRepository) Create(db *gorm.DB, surgicalCase *entity.SurgicalCase) error {
	return db.Create(surgicalCase).Error
}

func (r *surgicalCaseRepository) FindByID(db *gorm.DB, id string) (*entity.SurgicalCase, error) {
	var surgicalCase entity.SurgicalCase
	err := db.Preload("Plan").Preload("Booking").Where("id = ?", id).First(&surgicalCase).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &surgicalCase, nil
}

func (r *surgicalCaseRepository) Update(db *gorm.DB, surgicalCase *entity.SurgicalCase) error {
	return db.Omit("Plan", "Booking", "Patient", "Surgeon").Save(surgicalCase).Error
}

func (r *surgicalCaseRepository) FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.SurgicalCase, error) {
	var cases []entity.SurgicalCase
	err := db.Preload("Plan").
		Where("patient_id = ?", patientID).
		Order("created_at DESC").
		Find(&cases).Error
	if err != nil {
		return nil, err
	}
	return cases, nil
}

func (r *surgicalCaseRepository) FindByStatus(db *gorm.DB, status entity.CaseStatus) ([]entity.SurgicalCase, error) {
	var cases []entity.SurgicalCase
	err := db.Where("status = ?", status).
		Order("created_at ASC").
		Find(&cases).Error
	if err != nil {
		return nil, err
	}
	return cases, nil
}

func (r *surgicalCaseRepository) SavePlan(db *gorm.DB, plan *entity.CasePlan) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "surgical_case_id"}},
		UpdateAll: true,
	}).Create(plan).Error
}

func (r *surgicalCaseRepository) FindPlan(db *gorm.DB, surgicalCaseID string) (*entity.CasePlan, error) {
	var plan entity.CasePlan
	err := db.Where("surgical_case_id = ?", surgicalCaseID).First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}
