package converter

import (
	"surgical-clinic-backend/internal/delivery/dto"
	"surgical-clinic-backend/internal/domain/entity"
)

// CasePlanToResponse converts a CasePlan entity to CasePlanResponse DTO
func CasePlanToResponse(plan *entity.CasePlan) *dto.CasePlanResponse {
	if plan == nil {
		return nil
	}

	return &dto.CasePlanResponse{
		ProcedurePlan:    plan.ProcedurePlan,
		RiskAssessment:   plan.RiskAssessment,
		ConsentConfirmed: plan.ConsentConfirmed,
		ImageryReviewed:  plan.ImageryReviewed,
		ImplantRequired:  plan.ImplantRequired,
		ImplantDetails:   plan.ImplantDetails,
		ReadinessStatus:  string(plan.ReadinessStatus()),
		ReadyForSurgery:  plan.ReadyForSurgery(),
		MissingItems:     plan.MissingChecklistItems(),
		VersionToken:     plan.VersionToken,
	}
}

// TimelineToResponse converts an OperativeTimeline to TimelineResponse DTO,
// including derived durations and the items still missing for the case status.
func TimelineToResponse(timeline *entity.OperativeTimeline, status entity.CaseStatus) *dto.TimelineResponse {
	if timeline == nil {
		return nil
	}

	durations := timeline.DerivedDurations()

	response := &dto.TimelineResponse{
		WheelsIn:        timeline.WheelsIn,
		AnesthesiaStart: timeline.AnesthesiaStart,
		IncisionTime:    timeline.IncisionTime,
		ClosureTime:     timeline.ClosureTime,
		AnesthesiaEnd:   timeline.AnesthesiaEnd,
		WheelsOut:       timeline.WheelsOut,
		Durations: &dto.DurationsResponse{
			ORTimeMinutes:         durations.ORTimeMinutes,
			SurgeryTimeMinutes:    durations.SurgeryTimeMinutes,
			PrepTimeMinutes:       durations.PrepTimeMinutes,
			CloseOutTimeMinutes:   durations.CloseOutTimeMinutes,
			AnesthesiaTimeMinutes: durations.AnesthesiaTimeMinutes,
		},
	}

	for _, item := range timeline.MissingItemsForStatus(status) {
		response.MissingItems = append(response.MissingItems, dto.MissingItem{
			Field: string(item.Field),
			Label: item.Label,
		})
	}

	return response
}

// SurgicalCaseToResponse converts a SurgicalCase entity to response DTO
func SurgicalCaseToResponse(surgicalCase *entity.SurgicalCase) *dto.SurgicalCaseResponse {
	if surgicalCase == nil {
		return nil
	}

	return &dto.SurgicalCaseResponse{
		ID:               surgicalCase.ID,
		PatientID:        surgicalCase.PatientID,
		PrimarySurgeonID: surgicalCase.PrimarySurgeonID,
		ConsultationID:   surgicalCase.ConsultationID,
		Status:           string(surgicalCase.Status),
		Urgency:          string(surgicalCase.Urgency),
		Diagnosis:        surgicalCase.Diagnosis,
		ProcedureName:    surgicalCase.ProcedureName,
		Plan:             CasePlanToResponse(surgicalCase.Plan),
		Booking:          TheaterBookingToResponse(surgicalCase.Booking),
		Timeline:         TimelineToResponse(&surgicalCase.Timeline, surgicalCase.Status),
		CreatedAt:        surgicalCase.CreatedAt,
		UpdatedAt:        surgicalCase.UpdatedAt,
	}
}

// SurgicalCasesToResponses converts a slice of SurgicalCase entities to response DTOs
func SurgicalCasesToResponses(cases []entity.SurgicalCase) []dto.SurgicalCaseResponse {
	responses := make([]dto.SurgicalCaseResponse, len(cases))
	for i, surgicalCase := range cases {
		resp := SurgicalCaseToResponse(&surgicalCase)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
