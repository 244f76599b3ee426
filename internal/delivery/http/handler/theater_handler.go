package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"surgical-clinic-backend/internal/delivery/dto"
	"surgical-clinic-backend/internal/usecase"
	"surgical-clinic-backend/pkg/response"
	"surgical-clinic-backend/pkg/validator"

	"github.com/gorilla/mux"
)

type TheaterHandler struct {
	theaterUsecase usecase.TheaterUsecase
	validator      *validator.CustomValidator
}

func NewTheaterHandler(theaterUsecase usecase.TheaterUsecase, validator *validator.CustomValidator) *TheaterHandler {
	return &TheaterHandler{
		theaterUsecase: theaterUsecase,
		validator:      validator,
	}
}

func (h *TheaterHandler) CreateTheater(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTheaterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	theater, err := h.theaterUsecase.CreateTheater(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrTheaterNameTaken:
			response.Conflict(w, "Theater name already exists")
		default:
			response.InternalServerError(w, "Failed to create theater")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Theater created successfully", theater)
}

func (h *TheaterHandler) ListTheaters(w http.ResponseWriter, r *http.Request) {
	theaters, err := h.theaterUsecase.ListTheaters(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to list theaters")
		return
	}

	response.Success(w, http.StatusOK, "Theaters retrieved successfully", theaters)
}

func (h *TheaterHandler) UpdateTheater(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid theater ID", nil)
		return
	}

	var req dto.UpdateTheaterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	theater, err := h.theaterUsecase.UpdateTheater(r.Context(), id, &req)
	if err != nil {
		switch err {
		case usecase.ErrTheaterNotFound:
			response.NotFound(w, "Theater not found")
		case usecase.ErrTheaterNameTaken:
			response.Conflict(w, "Theater name already exists")
		default:
			response.InternalServerError(w, "Failed to update theater")
		}
		return
	}

	response.Success(w, http.StatusOK, "Theater updated successfully", theater)
}

func (h *TheaterHandler) DeleteTheater(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid theater ID", nil)
		return
	}

	if err := h.theaterUsecase.DeleteTheater(r.Context(), id); err != nil {
		switch err {
		case usecase.ErrTheaterNotFound:
			response.NotFound(w, "Theater not found")
		default:
			response.InternalServerError(w, "Failed to delete theater")
		}
		return
	}

	response.Success(w, http.StatusOK, "Theater deleted successfully", nil)
}
