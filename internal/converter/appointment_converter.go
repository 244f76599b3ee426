package converter

import (
	"surgical-clinic-backend/internal/delivery/dto"
	"surgical-clinic-backend/internal/domain/entity"

	"github.com/google/uuid"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	response := &dto.AppointmentResponse{
		ID:          appointment.ID,
		PatientID:   appointment.PatientID,
		DoctorID:    appointment.DoctorID,
		ScheduledAt: appointment.ScheduledAt,
		Type:        string(appointment.Type),
		Status:      string(appointment.Status),
		CreatedAt:   appointment.CreatedAt,
		UpdatedAt:   appointment.UpdatedAt,
	}

	if appointment.CheckIn != nil {
		response.CheckIn = &dto.CheckInInfoResponse{
			CheckedInAt:   appointment.CheckIn.CheckedInAt,
			CheckedInBy:   appointment.CheckIn.CheckedInBy,
			IsLate:        appointment.CheckIn.IsLate,
			LateByMinutes: appointment.CheckIn.LateByMinutes,
		}
	}

	if appointment.NoShow != nil {
		response.NoShow = &dto.NoShowInfoResponse{
			NoShowAt: appointment.NoShow.NoShowAt,
			Reason:   string(appointment.NoShow.Reason),
			Notes:    appointment.NoShow.Notes,
		}
	}

	if appointment.Patient.ID != uuid.Nil {
		response.Patient = PatientToResponse(&appointment.Patient)
	}

	return response
}

// AppointmentsToResponses converts a slice of Appointment entities to response DTOs
func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i, appointment := range appointments {
		resp := AppointmentToResponse(&appointment)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
