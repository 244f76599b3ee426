package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"surgical-clinic-backend/internal/delivery/dto"
	"surgical-clinic-backend/internal/domain/entity"
	"surgical-clinic-backend/internal/usecase"
	"surgical-clinic-backend/pkg/response"
	"surgical-clinic-backend/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type ConsultationHandler struct {
	consultationUsecase usecase.ConsultationUsecase
	validator           *validator.CustomValidator
}

func NewConsultationHandler(consultationUsecase usecase.ConsultationUsecase, validator *validator.CustomValidator) *ConsultationHandler {
	return &ConsultationHandler{
		consultationUsecase: consultationUsecase,
		validator:           validator,
	}
}

func (h *ConsultationHandler) StartConsultation(w http.ResponseWriter, r *http.Request) {
	var req dto.StartConsultationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	consultation, err := h.consultationUsecase.StartConsultation(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrAppointmentNotFound:
			response.NotFound(w, "Appointment not found")
		case usecase.ErrAppointmentNotArrived:
			response.Conflict(w, "Patient has not checked in for this appointment")
		case usecase.ErrConsultationExists:
			response.Conflict(w, "A consultation already exists for this appointment")
		default:
			response.InternalServerError(w, "Failed to start consultation")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Consultation started successfully", consultation)
}

func (h *ConsultationHandler) GetConsultation(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid consultation ID", nil)
		return
	}

	consultation, err := h.consultationUsecase.GetConsultation(r.Context(), id)
	if err != nil {
		switch err {
		case usecase.ErrConsultationNotFound:
			response.NotFound(w, "Consultation not found")
		default:
			response.InternalServerError(w, "Failed to get consultation")
		}
		return
	}

	response.Success(w, http.StatusOK, "Consultation retrieved successfully", consultation)
}

// SaveDraft applies one draft save. A stale version token is a conflict:
// the client must reload the latest draft and reapply its edits.
func (h *ConsultationHandler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid consultation ID", nil)
		return
	}

	var req dto.SaveConsultationDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	consultation, err := h.consultationUsecase.SaveDraft(r.Context(), id, &req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrConsultationNotFound):
			response.NotFound(w, "Consultation not found")
		case errors.Is(err, entity.ErrVersionConflict):
			response.Conflict(w, "Draft was modified by someone else, reload and try again")
		case errors.Is(err, entity.ErrInvalidState):
			response.Conflict(w, err.Error())
		default:
			response.InternalServerError(w, "Failed to save draft")
		}
		return
	}

	response.Success(w, http.StatusOK, "Draft saved successfully", consultation)
}

func (h *ConsultationHandler) CompleteConsultation(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid consultation ID", nil)
		return
	}

	consultation, err := h.consultationUsecase.CompleteConsultation(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrConsultationNotFound):
			response.NotFound(w, "Consultation not found")
		case errors.Is(err, entity.ErrInvalidState):
			response.Conflict(w, err.Error())
		default:
			response.InternalServerError(w, "Failed to complete consultation")
		}
		return
	}

	response.Success(w, http.StatusOK, "Consultation completed successfully", consultation)
}
