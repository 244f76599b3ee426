package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"surgical-clinic-backend/internal/delivery/dto"
	"surgical-clinic-backend/internal/domain/entity"
	"surgical-clinic-backend/internal/usecase"
	"surgical-clinic-backend/pkg/response"
	"surgical-clinic-backend/pkg/validator"

	"github.com/gorilla/mux"
)

type SurgicalCaseHandler struct {
	caseUsecase usecase.SurgicalCaseUsecase
	validator   *validator.CustomValidator
}

func NewSurgicalCaseHandler(caseUsecase usecase.SurgicalCaseUsecase, validator *validator.CustomValidator) *SurgicalCaseHandler {
	return &SurgicalCaseHandler{
		caseUsecase: caseUsecase,
		validator:   validator,
	}
}

func (h *SurgicalCaseHandler) CreateCase(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateSurgicalCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	surgicalCase, err := h.caseUsecase.CreateCase(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrConsultationNotFound:
			response.NotFound(w, "Consultation not found")
		case usecase.ErrConsultationIncomplete:
			response.Conflict(w, "Consultation must be completed before opening a surgical case")
		default:
			response.InternalServerError(w, "Failed to create surgical case")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Surgical case created successfully", surgicalCase)
}

func (h *SurgicalCaseHandler) GetCase(w http.ResponseWriter, r *http.Request) {
	surgicalCase, err := h.caseUsecase.GetCase(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		switch err {
		case usecase.ErrSurgicalCaseNotFound:
			response.NotFound(w, "Surgical case not found")
		default:
			response.InternalServerError(w, "Failed to get surgical case")
		}
		return
	}

	response.Success(w, http.StatusOK, "Surgical case retrieved successfully", surgicalCase)
}

func (h *SurgicalCaseHandler) ListByStatus(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		response.Error(w, http.StatusBadRequest, "status query parameter is required", nil)
		return
	}

	cases, err := h.caseUsecase.ListByStatus(r.Context(), status)
	if err != nil {
		response.InternalServerError(w, "Failed to list surgical cases")
		return
	}

	response.Success(w, http.StatusOK, "Surgical cases retrieved successfully", cases)
}

func (h *SurgicalCaseHandler) SavePlan(w http.ResponseWriter, r *http.Request) {
	var req dto.SaveCasePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	plan, err := h.caseUsecase.SavePlan(r.Context(), mux.Vars(r)["id"], &req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrSurgicalCaseNotFound):
			response.NotFound(w, "Surgical case not found")
		case errors.Is(err, entity.ErrVersionConflict):
			response.Conflict(w, "Plan was modified by someone else, reload and try again")
		case errors.Is(err, entity.ErrInvalidState), errors.Is(err, entity.ErrInvalidTransition):
			response.Conflict(w, err.Error())
		default:
			response.InternalServerError(w, "Failed to save case plan")
		}
		return
	}

	response.Success(w, http.StatusOK, "Case plan saved successfully", plan)
}

// SubmitForScheduling moves a planned case to ready_for_scheduling once the
// checklist is complete. An incomplete checklist is reported with the missing
// items in the error message.
func (h *SurgicalCaseHandler) SubmitForScheduling(w http.ResponseWriter, r *http.Request) {
	surgicalCase, err := h.caseUsecase.SubmitForScheduling(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrSurgicalCaseNotFound):
			response.NotFound(w, "Surgical case not found")
		case errors.Is(err, usecase.ErrCasePlanNotFound):
			response.Conflict(w, "No case plan exists yet")
		case errors.Is(err, usecase.ErrChecklistIncomplete):
			response.Error(w, http.StatusConflict, err.Error(), nil)
		case errors.Is(err, entity.ErrInvalidTransition):
			response.Conflict(w, err.Error())
		default:
			response.InternalServerError(w, "Failed to submit case for scheduling")
		}
		return
	}

	response.Success(w, http.StatusOK, "Case submitted for scheduling", surgicalCase)
}

func (h *SurgicalCaseHandler) StartPrep(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.caseUsecase.StartPrep, "Case prep started")
}

func (h *SurgicalCaseHandler) EnterTheater(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.caseUsecase.EnterTheater, "Case entered theater")
}

func (h *SurgicalCaseHandler) MoveToRecovery(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.caseUsecase.MoveToRecovery, "Case moved to recovery")
}

func (h *SurgicalCaseHandler) CompleteCase(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.caseUsecase.CompleteCase, "Case completed")
}

func (h *SurgicalCaseHandler) CancelCase(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.caseUsecase.CancelCase, "Case cancelled")
}

// RecordTimelineEvent stores one intraoperative timestamp. Validation
// failures return every finding at once so theater staff can correct the
// whole entry.
func (h *SurgicalCaseHandler) RecordTimelineEvent(w http.ResponseWriter, r *http.Request) {
	var req dto.RecordTimelineEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	timeline, err := h.caseUsecase.RecordTimelineEvent(r.Context(), mux.Vars(r)["id"], &req)
	if err != nil {
		var validationErr *usecase.TimelineValidationError
		switch {
		case errors.Is(err, usecase.ErrSurgicalCaseNotFound):
			response.NotFound(w, "Surgical case not found")
		case errors.As(err, &validationErr):
			response.Error(w, http.StatusBadRequest, "Timeline validation failed", validationErr.Findings)
		case errors.Is(err, entity.ErrInvalidState):
			response.Conflict(w, err.Error())
		default:
			response.InternalServerError(w, "Failed to record timeline event")
		}
		return
	}

	response.Success(w, http.StatusOK, "Timeline event recorded successfully", timeline)
}

func (h *SurgicalCaseHandler) transition(w http.ResponseWriter, r *http.Request, fn func(context.Context, string) (*dto.SurgicalCaseResponse, error), message string) {
	surgicalCase, err := fn(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrSurgicalCaseNotFound):
			response.NotFound(w, "Surgical case not found")
		case errors.Is(err, entity.ErrInvalidTransition):
			response.Conflict(w, err.Error())
		default:
			response.InternalServerError(w, "Failed to transition surgical case")
		}
		return
	}

	response.Success(w, http.StatusOK, message, surgicalCase)
}
