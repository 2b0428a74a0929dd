package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/medflow/clinic-booking/internal/booking"
)

// BookingService is the booking engine as seen by the HTTP layer.
type BookingService interface {
	Create(ctx context.Context, slotID uuid.UUID, patientName, patientPhone string) (*booking.ReservationDetail, error)
	Cancel(ctx context.Context, reservationID uuid.UUID) (*booking.Reservation, error)
}

type SlotAdminService interface {
	Open(ctx context.Context, slotID uuid.UUID) (*booking.TimeSlot, error)
	Close(ctx context.Context, slotID uuid.UUID) (*booking.TimeSlot, error)
}

type QueryService interface {
	AvailableSlots(ctx context.Context, doctorID uuid.UUID, day time.Time) ([]booking.TimeSlot, error)
	ReservationByID(ctx context.Context, id uuid.UUID) (*booking.ReservationDetail, error)
	ReservationsByStatus(ctx context.Context, status booking.ReservationStatus) ([]booking.ReservationDetail, error)
	Departments(ctx context.Context) ([]booking.Department, error)
	DoctorsByDepartment(ctx context.Context, departmentID uuid.UUID) ([]booking.Doctor, error)
}

var validate = validator.New()

func createReservationHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateReservationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		if err := validate.Struct(req); err != nil {
			writeError(w, http.StatusUnprocessableEntity, "validation_failed", err.Error())
			return
		}

		slotID, err := uuid.Parse(req.SlotID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_slot_id", "slot_id must be a valid UUID")
			return
		}

		detail, err := svc.Create(r.Context(), slotID, req.PatientName, req.PatientPhone)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toReservationResponse(detail))
	}
}

func cancelReservationHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_reservation_id", "id must be a valid UUID")
			return
		}

		res, err := svc.Cancel(r.Context(), id)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, CancelReservationResponse{
			ReservationID: res.ID,
			Status:        string(res.Status),
		})
	}
}

func getReservationHandler(svc QueryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_reservation_id", "id must be a valid UUID")
			return
		}

		detail, err := svc.ReservationByID(r.Context(), id)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toReservationResponse(detail))
	}
}

func listReservationsHandler(svc QueryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := booking.ReservationConfirmed
		if q := r.URL.Query().Get("status"); q != "" {
			switch booking.ReservationStatus(q) {
			case booking.ReservationConfirmed, booking.ReservationCanceled:
				status = booking.ReservationStatus(q)
			default:
				writeError(w, http.StatusBadRequest, "invalid_status", "status must be confirmed or canceled")
				return
			}
		}

		list, err := svc.ReservationsByStatus(r.Context(), status)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		resp := make([]ReservationResponse, 0, len(list))
		for i := range list {
			resp = append(resp, toReservationResponse(&list[i]))
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func availableSlotsHandler(svc QueryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, err := uuid.Parse(r.URL.Query().Get("doctor_id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctor_id must be a valid UUID")
			return
		}

		day, err := time.Parse(dateFormat, r.URL.Query().Get("date"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_date", "date must be formatted YYYY-MM-DD")
			return
		}

		slots, err := svc.AvailableSlots(r.Context(), doctorID, day)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		resp := make([]AvailableSlotResponse, 0, len(slots))
		for _, s := range slots {
			resp = append(resp, AvailableSlotResponse{
				SlotID:    s.ID,
				StartTime: s.StartTime.Format(timeFormat),
			})
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func closeSlotHandler(svc SlotAdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_slot_id", "id must be a valid UUID")
			return
		}

		slot, err := svc.Close(r.Context(), id)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, SlotStatusResponse{SlotID: slot.ID, Status: string(slot.Status)})
	}
}

func openSlotHandler(svc SlotAdminService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_slot_id", "id must be a valid UUID")
			return
		}

		slot, err := svc.Open(r.Context(), id)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, SlotStatusResponse{SlotID: slot.ID, Status: string(slot.Status)})
	}
}

func listDepartmentsHandler(svc QueryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		departments, err := svc.Departments(r.Context())
		if err != nil {
			handleBookingError(w, err)
			return
		}

		resp := make([]DepartmentResponse, 0, len(departments))
		for _, d := range departments {
			resp = append(resp, DepartmentResponse{ID: d.ID, Name: d.Name})
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func listDoctorsHandler(svc QueryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		departmentID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_department_id", "id must be a valid UUID")
			return
		}

		doctors, err := svc.DoctorsByDepartment(r.Context(), departmentID)
		if err != nil {
			handleBookingError(w, err)
			return
		}

		resp := make([]DoctorResponse, 0, len(doctors))
		for _, d := range doctors {
			resp = append(resp, DoctorResponse{
				ID:           d.ID,
				DepartmentID: d.DepartmentID,
				Name:         d.Name,
				Specialty:    d.Specialty,
			})
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

// handleBookingError maps domain errors to HTTP statuses. Anything not in
// the taxonomy is an internal error; raw storage errors never reach the
// client with a specific code.
func handleBookingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, booking.ErrSlotNotFound):
		writeError(w, http.StatusNotFound, "slot_not_found", err.Error())
	case errors.Is(err, booking.ErrReservationNotFound):
		writeError(w, http.StatusNotFound, "reservation_not_found", err.Error())
	case errors.Is(err, booking.ErrSlotAlreadyTaken):
		writeError(w, http.StatusConflict, "slot_already_taken", err.Error())
	case errors.Is(err, booking.ErrReservationNotCancelable):
		writeError(w, http.StatusConflict, "reservation_not_cancelable", err.Error())
	case errors.Is(err, booking.ErrSlotHasReservation):
		writeError(w, http.StatusConflict, "slot_has_reservation", err.Error())
	case errors.Is(err, booking.ErrSlotBusy):
		writeError(w, http.StatusConflict, "slot_being_booked", "slot is currently being booked, please retry shortly")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "something went wrong")
	}
}
