package api

import (
	"github.com/google/uuid"

	"github.com/medflow/clinic-booking/internal/booking"
)

type CreateReservationRequest struct {
	SlotID       string `json:"slot_id" validate:"required,uuid"`
	PatientName  string `json:"patient_name" validate:"required,max=100"`
	PatientPhone string `json:"patient_phone" validate:"required,min=10,max=15"`
}

type ReservationResponse struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	SlotID        uuid.UUID `json:"slot_id"`
	Date          string    `json:"date"`
	StartTime     string    `json:"start_time"`
	EndTime       string    `json:"end_time"`
	Status        string    `json:"status"`
	PatientName   string    `json:"patient_name"`
}

type CancelReservationResponse struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	Status        string    `json:"status"`
}

type SlotStatusResponse struct {
	SlotID uuid.UUID `json:"slot_id"`
	Status string    `json:"status"`
}

type AvailableSlotResponse struct {
	SlotID    uuid.UUID `json:"slot_id"`
	StartTime string    `json:"start_time"`
}

type DepartmentResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type DoctorResponse struct {
	ID           uuid.UUID `json:"id"`
	DepartmentID uuid.UUID `json:"department_id"`
	Name         string    `json:"name"`
	Specialty    *string   `json:"specialty,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

const (
	dateFormat = "2006-01-02"
	timeFormat = "15:04"
)

func toReservationResponse(d *booking.ReservationDetail) ReservationResponse {
	return ReservationResponse{
		ReservationID: d.ID,
		SlotID:        d.SlotID,
		Date:          d.Slot.Date.Format(dateFormat),
		StartTime:     d.Slot.StartTime.Format(timeFormat),
		EndTime:       d.Slot.EndTime.Format(timeFormat),
		Status:        string(d.Status),
		PatientName:   d.PatientName,
	}
}
