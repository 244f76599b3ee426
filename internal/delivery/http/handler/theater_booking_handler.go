package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"surgical-clinic-backend/internal/delivery/dto"
	"surgical-clinic-backend/internal/usecase"
	"surgical-clinic-backend/pkg/response"
	"surgical-clinic-backend/pkg/validator"

	"github.com/gorilla/mux"
)

type TheaterBookingHandler struct {
	bookingUsecase usecase.TheaterBookingUsecase
	validator      *validator.CustomValidator
}

func NewTheaterBookingHandler(bookingUsecase usecase.TheaterBookingUsecase, validator *validator.CustomValidator) *TheaterBookingHandler {
	return &TheaterBookingHandler{
		bookingUsecase: bookingUsecase,
		validator:      validator,
	}
}

// LockSlot places a short provisional hold on a theater slot
// @Summary Lock a theater slot
// @Description Provisionally hold a theater slot for a surgical case; the lock expires unless confirmed
// @Tags TheaterBookings
// @Accept json
// @Produce json
// @Param request body dto.LockSlotRequest true "Lock Slot Request"
// @Success 201 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /theater-bookings/lock [post]
func (h *TheaterBookingHandler) LockSlot(w http.ResponseWriter, r *http.Request) {
	var req dto.LockSlotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	booking, err := h.bookingUsecase.LockSlot(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrSurgicalCaseNotFound):
			response.NotFound(w, "Surgical case not found")
		case errors.Is(err, usecase.ErrTheaterNotFound):
			response.NotFound(w, "Theater not found")
		case errors.Is(err, usecase.ErrTheaterInactive):
			response.Conflict(w, "Theater is not active")
		case errors.Is(err, usecase.ErrCaseNotSchedulable):
			response.Conflict(w, "Surgical case is not ready for scheduling")
		case errors.Is(err, usecase.ErrSlotLocked):
			response.Conflict(w, "Slot conflicts with an existing booking or active lock")
		case errors.Is(err, usecase.ErrLockLimitExceeded):
			response.Conflict(w, "Active slot lock limit reached, release or confirm existing locks first")
		default:
			response.InternalServerError(w, "Failed to lock slot")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Slot locked successfully", booking)
}

// ConfirmBooking promotes a provisional lock to a confirmed booking
// @Summary Confirm a theater booking
// @Description Confirm a provisional slot lock; moves the surgical case to scheduled
// @Tags TheaterBookings
// @Produce json
// @Param id path int true "Booking ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 410 {object} response.Response
// @Router /theater-bookings/{id}/confirm [post]
func (h *TheaterBookingHandler) ConfirmBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid booking ID", nil)
		return
	}

	booking, err := h.bookingUsecase.ConfirmBooking(r.Context(), bookingID)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrBookingNotFound):
			response.NotFound(w, "Booking not found")
		case errors.Is(err, usecase.ErrNotLockHolder):
			response.Forbidden(w, "Only the lock holder can confirm this booking")
		case errors.Is(err, usecase.ErrLockExpired):
			response.Gone(w, "Slot lock has expired, lock the slot again")
		case errors.Is(err, usecase.ErrBookingNotProvisional):
			response.Conflict(w, "Booking is not a provisional lock")
		case errors.Is(err, usecase.ErrSlotLocked):
			response.Conflict(w, "Slot conflicts with an existing booking")
		default:
			response.InternalServerError(w, "Failed to confirm booking")
		}
		return
	}

	response.Success(w, http.StatusOK, "Booking confirmed successfully", booking)
}

func (h *TheaterBookingHandler) ReleaseLock(w http.ResponseWriter, r *http.Request) {
	bookingID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid booking ID", nil)
		return
	}

	if err := h.bookingUsecase.ReleaseLock(r.Context(), bookingID); err != nil {
		switch {
		case errors.Is(err, usecase.ErrBookingNotFound):
			response.NotFound(w, "Booking not found")
		case errors.Is(err, usecase.ErrNotLockHolder):
			response.Forbidden(w, "Only the lock holder can release this booking")
		case errors.Is(err, usecase.ErrBookingNotProvisional):
			response.Conflict(w, "Booking is not a provisional lock")
		default:
			response.InternalServerError(w, "Failed to release lock")
		}
		return
	}

	response.Success(w, http.StatusOK, "Lock released successfully", nil)
}

func (h *TheaterBookingHandler) GetBookingsByCase(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.bookingUsecase.GetBookingsByCase(r.Context(), mux.Vars(r)["caseId"])
	if err != nil {
		response.InternalServerError(w, "Failed to get bookings")
		return
	}

	response.Success(w, http.StatusOK, "Bookings retrieved successfully", bookings)
}
