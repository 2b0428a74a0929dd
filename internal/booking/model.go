package booking

import (
	"time"

	"github.com/google/uuid"
)

type SlotStatus string

const (
	SlotOpen        SlotStatus = "open"
	SlotTaken       SlotStatus = "taken"
	SlotUnavailable SlotStatus = "doctor_unavailable"
)

type ReservationStatus string

const (
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCanceled  ReservationStatus = "canceled"
)

type Department struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

type Doctor struct {
	ID           uuid.UUID
	DepartmentID uuid.UUID
	Name         string
	Specialty    *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TimeSlot is a doctor-owned, date-bound bookable unit. Slots are created by
// seeding/scheduling and never deleted; only their status changes.
type TimeSlot struct {
	ID        uuid.UUID
	DoctorID  uuid.UUID
	Date      time.Time
	StartTime time.Time
	EndTime   time.Time
	Status    SlotStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Reservation is a patient's claim on exactly one slot. The slot reference is
// immutable after creation; cancellation is a soft delete via status.
type Reservation struct {
	ID           uuid.UUID
	SlotID       uuid.UUID
	Status       ReservationStatus
	PatientName  string
	PatientPhone string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type ReservationDetail struct {
	Reservation
	Slot *TimeSlot
}
