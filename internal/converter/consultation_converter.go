package converter

import (
	"surgical-clinic-backend/internal/delivery/dto"
	"surgical-clinic-backend/internal/domain/entity"
)

// ConsultationToResponse converts a Consultation entity to response DTO
func ConsultationToResponse(consultation *entity.Consultation) *dto.ConsultationResponse {
	if consultation == nil {
		return nil
	}

	return &dto.ConsultationResponse{
		ID:             consultation.ID,
		AppointmentID:  consultation.AppointmentID,
		PatientID:      consultation.PatientID,
		DoctorID:       consultation.DoctorID,
		Status:         string(consultation.Status),
		Subjective:     consultation.Subjective,
		Examination:    consultation.Examination,
		Assessment:     consultation.Assessment,
		Recommendation: consultation.Recommendation,
		VersionToken:   consultation.VersionToken,
		CreatedAt:      consultation.CreatedAt,
		UpdatedAt:      consultation.UpdatedAt,
	}
}
