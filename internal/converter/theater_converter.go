package converter

import (
	"surgical-clinic-backend/internal/delivery/dto"
	"surgical-clinic-backend/internal/domain/entity"
)

// TheaterToResponse converts a Theater entity to response DTO
func TheaterToResponse(theater *entity.Theater) *dto.TheaterResponse {
	if theater == nil {
		return nil
	}

	isActive := theater.IsActive == nil || *theater.IsActive

	return &dto.TheaterResponse{
		ID:        theater.ID,
		Name:      theater.Name,
		Location:  theater.Location,
		IsActive:  isActive,
		CreatedAt: theater.CreatedAt,
	}
}

// TheatersToResponses converts a slice of Theater entities to response DTOs
func TheatersToResponses(theaters []entity.Theater) []dto.TheaterResponse {
	responses := make([]dto.TheaterResponse, len(theaters))
	for i, theater := range theaters {
		resp := TheaterToResponse(&theater)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
