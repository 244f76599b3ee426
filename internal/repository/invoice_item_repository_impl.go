package repository

import (
	"surgical-clinic-backend/internal/domain/entity"
	domainRepo "surgical-clinic-backend/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type invoiceItemRepository struct{}

func NewInvoiceItemRepository() domainRepo.InvoiceItemRepository {
	return &invoiceItemRepository{}
}

func (r *invoiceItemRepository) Create(db *gorm.DB, item *entity.InvoiceItem) error {
	return db.Create(item).Error
}

func (r *invoiceItemRepository) FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.InvoiceItem, error) {
	var items []entity.InvoiceItem
	err := db.Where("patient_id = ?", patientID).
		Order("created_at DESC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
