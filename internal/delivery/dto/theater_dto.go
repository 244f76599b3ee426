package dto

import "time"

// Request DTOs

type CreateTheaterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Location string `json:"location" validate:"omitempty,max=255"`
}

type UpdateTheaterRequest struct {
	Name     string `json:"name" validate:"omitempty,min=2,max=100"`
	Location string `json:"location" validate:"omitempty,max=255"`
	IsActive *bool  `json:"is_active"`
}

// Response DTOs

type TheaterResponse struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

type TheaterListResponse struct {
	Theaters []TheaterResponse `json:"theaters"`
	Total    int               `json:"total"`
}
