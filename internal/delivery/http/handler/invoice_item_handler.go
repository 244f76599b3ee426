package handler

import (
	"encoding/json"
	"net/http"

	"surgical-clinic-backend/internal/delivery/dto"
	"surgical-clinic-backend/internal/usecase"
	"surgical-clinic-backend/pkg/response"
	"surgical-clinic-backend/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type InvoiceItemHandler struct {
	invoiceUsecase usecase.InvoiceItemUsecase
	validator      *validator.CustomValidator
}

func NewInvoiceItemHandler(invoiceUsecase usecase.InvoiceItemUsecase, validator *validator.CustomValidator) *InvoiceItemHandler {
	return &InvoiceItemHandler{
		invoiceUsecase: invoiceUsecase,
		validator:      validator,
	}
}

func (h *InvoiceItemHandler) CreateInvoiceItem(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateInvoiceItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	item, err := h.invoiceUsecase.CreateInvoiceItem(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrPatientNotFound:
			response.NotFound(w, "Patient not found")
		case usecase.ErrInvalidUnitPrice:
			response.Error(w, http.StatusBadRequest, "Invalid unit price", nil)
		default:
			response.InternalServerError(w, "Failed to create invoice item")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Invoice item created successfully", item)
}

func (h *InvoiceItemHandler) ListByPatient(w http.ResponseWriter, r *http.Request) {
	patientID, err := uuid.Parse(mux.Vars(r)["patientId"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid patient ID", nil)
		return
	}

	items, err := h.invoiceUsecase.ListByPatient(r.Context(), patientID)
	if err != nil {
		response.InternalServerError(w, "Failed to list invoice items")
		return
	}

	response.Success(w, http.StatusOK, "Invoice items retrieved successfully", items)
}
