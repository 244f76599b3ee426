package converter

import (
	"surgical-clinic-backend/internal/delivery/dto"
	"surgical-clinic-backend/internal/domain/entity"
)

// UserToResponse converts a User entity to UserResponse DTO
func UserToResponse(user *entity.User) *dto.UserResponse {
	if user == nil {
		return nil
	}

	isActive := user.IsActive == nil || *user.IsActive

	return &dto.UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		RoleID:    user.RoleID,
		RoleName:  user.Role.RoleName,
		IsActive:  isActive,
		CreatedAt: user.CreatedAt,
	}
}
