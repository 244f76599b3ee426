package repository

import (
	"surgical-clinic-backend/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type InvoiceItemRepository interface {
	Create(db *gorm.DB, item *entity.InvoiceItem) error
	FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.InvoiceItem, error)
}
