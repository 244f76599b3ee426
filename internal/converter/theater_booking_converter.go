package converter

import (
	"surgical-clinic-backend/internal/delivery/dto"
	"surgical-clinic-backend/internal/domain/entity"
)

// TheaterBookingToResponse converts a TheaterBooking entity to response DTO
func TheaterBookingToResponse(booking *entity.TheaterBooking) *dto.TheaterBookingResponse {
	if booking == nil {
		return nil
	}

	return &dto.TheaterBookingResponse{
		ID:             booking.ID,
		SurgicalCaseID: booking.SurgicalCaseID,
		TheaterID:      booking.TheaterID,
		StartTime:      booking.StartTime,
		EndTime:        booking.EndTime,
		Status:         string(booking.Status),
		LockedBy:       booking.LockedBy,
		LockedAt:       booking.LockedAt,
		LockExpiresAt:  booking.LockExpiresAt,
		ConfirmedBy:    booking.ConfirmedBy,
		CreatedAt:      booking.CreatedAt,
	}
}
