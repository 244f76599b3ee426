package converter

import (
	"surgical-clinic-backend/internal/delivery/dto"
	"surgical-clinic-backend/internal/domain/entity"
)

// InvoiceItemToResponse converts an InvoiceItem entity to response DTO
func InvoiceItemToResponse(item *entity.InvoiceItem) *dto.InvoiceItemResponse {
	if item == nil {
		return nil
	}

	return &dto.InvoiceItemResponse{
		ID:             item.ID,
		PatientID:      item.PatientID,
		ConsultationID: item.ConsultationID,
		Description:    item.Description,
		Quantity:       item.Quantity,
		UnitPrice:      item.UnitPrice,
		CreatedAt:      item.CreatedAt,
	}
}

// InvoiceItemsToResponses converts a slice of InvoiceItem entities to response DTOs
func InvoiceItemsToResponses(items []entity.InvoiceItem) []dto.InvoiceItemResponse {
	responses := make([]dto.InvoiceItemResponse, len(items))
	for i, item := range items {
		resp := InvoiceItemToResponse(&item)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
