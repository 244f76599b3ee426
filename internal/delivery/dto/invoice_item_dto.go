package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type CreateInvoiceItemRequest struct {
	PatientID      uuid.UUID  `json:"patient_id" validate:"required"`
	ConsultationID *uuid.UUID `json:"consultation_id"`
	Description    string     `json:"description" validate:"required,max=255"`
	Quantity       int        `json:"quantity" validate:"required,min=1"`
	UnitPrice      string     `json:"unit_price" validate:"required"`
}

// Response DTOs

type InvoiceItemResponse struct {
	ID             uuid.UUID       `json:"id"`
	PatientID      uuid.UUID       `json:"patient_id"`
	ConsultationID *uuid.UUID      `json:"consultation_id,omitempty"`
	Description    string          `json:"description"`
	Quantity       int             `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	CreatedAt      time.Time       `json:"created_at"`
}

type InvoiceItemListResponse struct {
	Items []InvoiceItemResponse `json:"items"`
	Total int                   `json:"total"`
}
