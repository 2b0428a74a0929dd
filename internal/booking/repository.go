package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSlotNotFound             = errors.New("slot not found")
	ErrReservationNotFound      = errors.New("reservation not found")
	ErrSlotAlreadyTaken         = errors.New("slot already has a live reservation")
	ErrReservationNotCancelable = errors.New("reservation is not cancelable")
	ErrSlotHasReservation       = errors.New("slot has a live reservation and cannot be reopened")
)

// TxStore is the store surface visible inside one transaction. The ForUpdate
// fetches take an exclusive row lock held until the transaction ends, which
// is what serializes concurrent bookings of the same slot.
type TxStore interface {
	SlotForUpdate(ctx context.Context, id uuid.UUID) (*TimeSlot, error)
	ReservationForUpdate(ctx context.Context, id uuid.UUID) (*Reservation, error)

	SetSlotStatus(ctx context.Context, id uuid.UUID, status SlotStatus) error
	SetReservationStatus(ctx context.Context, id uuid.UUID, status ReservationStatus) error

	// InsertReservation persists a new reservation. A unique-constraint
	// violation on the live-reservation-per-slot index is reported as
	// ErrSlotAlreadyTaken.
	InsertReservation(ctx context.Context, r *Reservation) error

	HasLiveReservation(ctx context.Context, slotID uuid.UUID) (bool, error)
}

// Repository contains all DB interactions needed by the booking engine, slot
// administration and the query surface. InTx runs fn in a single transaction,
// committing when fn returns nil and rolling back otherwise.
type Repository interface {
	InTx(ctx context.Context, fn func(tx TxStore) error) error

	// Plain reads, no locking.
	GetSlotByID(ctx context.Context, id uuid.UUID) (*TimeSlot, error)
	GetReservationDetail(ctx context.Context, id uuid.UUID) (*ReservationDetail, error)
	ListOpenSlots(ctx context.Context, doctorID uuid.UUID, day time.Time) ([]TimeSlot, error)
	ListReservationsByStatus(ctx context.Context, status ReservationStatus) ([]ReservationDetail, error)

	ListDepartments(ctx context.Context) ([]Department, error)
	ListDoctorsByDepartment(ctx context.Context, departmentID uuid.UUID) ([]Doctor, error)
}
