package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceItem is a billing line item recorded against a patient. Amounts are
// recorded as entered; totals and payment processing happen downstream.
type InvoiceItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PatientID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"patient_id"`
	ConsultationID *uuid.UUID      `gorm:"type:uuid;index" json:"consultation_id,omitempty"`
	Description    string          `gorm:"type:varchar(255);not null" json:"description"`
	Quantity       int             `gorm:"not null;default:1" json:"quantity"`
	UnitPrice      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`

	// Relationships
	Patient Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
}

func (InvoiceItem) TableName() string {
	return "invoice_items"
}
