package converter

import (
	"surgical-clinic-backend/internal/delivery/dto"
	"surgical-clinic-backend/internal/domain/entity"
)

// PatientToResponse converts a Patient entity to PatientResponse DTO
func PatientToResponse(patient *entity.Patient) *dto.PatientResponse {
	if patient == nil {
		return nil
	}

	return &dto.PatientResponse{
		ID:          patient.ID,
		MRN:         patient.MRN,
		FullName:    patient.FullName,
		DateOfBirth: patient.DateOfBirth,
		Gender:      patient.Gender,
		PhoneNumber: patient.PhoneNumber,
		Address:     patient.Address,
		CreatedAt:   patient.CreatedAt,
	}
}

// PatientsToResponses converts a slice of Patient entities to response DTOs
func PatientsToResponses(patients []entity.Patient) []dto.PatientResponse {
	responses := make([]dto.PatientResponse, len(patients))
	for i, patient := range patients {
		resp := PatientToResponse(&patient)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
