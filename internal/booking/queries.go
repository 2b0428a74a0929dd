package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Queries is the read-only projection surface. Plain reads, no locking;
// read-committed staleness is acceptable here because every mutating path
// goes through the engine or the admin.
type Queries struct {
	repo Repository
}

func NewQueries(repo Repository) *Queries {
	return &Queries{repo: repo}
}

// AvailableSlots lists a doctor's OPEN slots on a given day, start time
// ascending.
func (q *Queries) AvailableSlots(ctx context.Context, doctorID uuid.UUID, day time.Time) ([]TimeSlot, error) {
	slots, err := q.repo.ListOpenSlots(ctx, doctorID, day)
	if err != nil {
		return nil, fmt.Errorf("list open slots: %w", err)
	}
	return slots, nil
}

func (q *Queries) ReservationByID(ctx context.Context, id uuid.UUID) (*ReservationDetail, error) {
	return q.repo.GetReservationDetail(ctx, id)
}

func (q *Queries) ReservationsByStatus(ctx context.Context, status ReservationStatus) ([]ReservationDetail, error) {
	list, err := q.repo.ListReservationsByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	return list, nil
}

func (q *Queries) Departments(ctx context.Context) ([]Department, error) {
	return q.repo.ListDepartments(ctx)
}

func (q *Queries) DoctorsByDepartment(ctx context.Context, departmentID uuid.UUID) ([]Doctor, error) {
	return q.repo.ListDoctorsByDepartment(ctx, departmentID)
}
