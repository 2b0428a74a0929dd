package booking

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	redisclient "github.com/medflow/clinic-booking/internal/redis"
)

// memStore is an in-memory Repository used by the unit tests. A single mutex
// held for the whole of InTx stands in for the database row locks: use cases
// are serialized exactly as they would be against contended rows, and a
// failed fn leaves no trace, like a rollback.
type memStore struct {
	mu           sync.Mutex
	slots        map[uuid.UUID]*TimeSlot
	reservations map[uuid.UUID]*Reservation
	departments  []Department
	doctors      []Doctor
}

func newMemStore() *memStore {
	return &memStore{
		slots:        make(map[uuid.UUID]*TimeSlot),
		reservations: make(map[uuid.UUID]*Reservation),
	}
}

func (s *memStore) addSlot(doctorID uuid.UUID, day time.Time, startHour, startMin int, status SlotStatus) *TimeSlot {
	start := time.Date(day.Year(), day.Month(), day.Day(), startHour, startMin, 0, 0, time.UTC)
	slot := &TimeSlot{
		ID:        uuid.New(),
		DoctorID:  doctorID,
		Date:      day,
		StartTime: start,
		EndTime:   start.Add(30 * time.Minute),
		Status:    status,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	s.mu.Lock()
	s.slots[slot.ID] = slot
	s.mu.Unlock()
	return slot
}

func (s *memStore) snapshot() (map[uuid.UUID]*TimeSlot, map[uuid.UUID]*Reservation) {
	slots := make(map[uuid.UUID]*TimeSlot, len(s.slots))
	for id, slot := range s.slots {
		c := *slot
		slots[id] = &c
	}
	reservations := make(map[uuid.UUID]*Reservation, len(s.reservations))
	for id, r := range s.reservations {
		c := *r
		reservations[id] = &c
	}
	return slots, reservations
}

func (s *memStore) InTx(ctx context.Context, fn func(tx TxStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slots, reservations := s.snapshot()
	if err := fn(&memTx{store: s}); err != nil {
		s.slots = slots
		s.reservations = reservations
		return err
	}
	return nil
}

type memTx struct {
	store *memStore
}

func (t *memTx) SlotForUpdate(ctx context.Context, id uuid.UUID) (*TimeSlot, error) {
	slot, ok := t.store.slots[id]
	if !ok {
		return nil, ErrSlotNotFound
	}
	c := *slot
	return &c, nil
}

func (t *memTx) ReservationForUpdate(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	r, ok := t.store.reservations[id]
	if !ok {
		return nil, ErrReservationNotFound
	}
	c := *r
	return &c, nil
}

func (t *memTx) SetSlotStatus(ctx context.Context, id uuid.UUID, status SlotStatus) error {
	slot, ok := t.store.slots[id]
	if !ok {
		return ErrSlotNotFound
	}
	slot.Status = status
	slot.UpdatedAt = time.Now()
	return nil
}

func (t *memTx) SetReservationStatus(ctx context.Context, id uuid.UUID, status ReservationStatus) error {
	r, ok := t.store.reservations[id]
	if !ok {
		return ErrReservationNotFound
	}
	r.Status = status
	r.UpdatedAt = time.Now()
	return nil
}

func (t *memTx) InsertReservation(ctx context.Context, r *Reservation) error {
	for _, existing := range t.store.reservations {
		if existing.SlotID == r.SlotID && existing.Status == ReservationConfirmed {
			return ErrSlotAlreadyTaken
		}
	}
	c := *r
	c.UpdatedAt = c.CreatedAt
	t.store.reservations[c.ID] = &c
	*r = c
	return nil
}

func (t *memTx) HasLiveReservation(ctx context.Context, slotID uuid.UUID) (bool, error) {
	for _, r := range t.store.reservations {
		if r.SlotID == slotID && r.Status == ReservationConfirmed {
			return true, nil
		}
	}
	return false, nil
}

// Plain reads

func (s *memStore) GetSlotByID(ctx context.Context, id uuid.UUID) (*TimeSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.slots[id]
	if !ok {
		return nil, ErrSlotNotFound
	}
	c := *slot
	return &c, nil
}

func (s *memStore) GetReservationDetail(ctx context.Context, id uuid.UUID) (*ReservationDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reservations[id]
	if !ok {
		return nil, ErrReservationNotFound
	}
	slot, ok := s.slots[r.SlotID]
	if !ok {
		return nil, ErrSlotNotFound
	}
	rc, sc := *r, *slot
	return &ReservationDetail{Reservation: rc, Slot: &sc}, nil
}

func (s *memStore) ListOpenSlots(ctx context.Context, doctorID uuid.UUID, day time.Time) ([]TimeSlot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []TimeSlot
	for _, slot := range s.slots {
		if slot.DoctorID != doctorID || slot.Status != SlotOpen {
			continue
		}
		y1, m1, d1 := slot.Date.Date()
		y2, m2, d2 := day.Date()
		if y1 != y2 || m1 != m2 || d1 != d2 {
			continue
		}
		result = append(result, *slot)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartTime.Before(result[j].StartTime)
	})
	return result, nil
}

func (s *memStore) ListReservationsByStatus(ctx context.Context, status ReservationStatus) ([]ReservationDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result []ReservationDetail
	for _, r := range s.reservations {
		if r.Status != status {
			continue
		}
		slot, ok := s.slots[r.SlotID]
		if !ok {
			return nil, ErrSlotNotFound
		}
		rc, sc := *r, *slot
		result = append(result, ReservationDetail{Reservation: rc, Slot: &sc})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (s *memStore) ListDepartments(ctx context.Context) ([]Department, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Department(nil), s.departments...), nil
}

func (s *memStore) ListDoctorsByDepartment(ctx context.Context, departmentID uuid.UUID) ([]Doctor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []Doctor
	for _, d := range s.doctors {
		if d.DepartmentID == departmentID {
			result = append(result, d)
		}
	}
	return result, nil
}

// Lockers

type nopLocker struct{}

func (nopLocker) WithSlotLock(ctx context.Context, _ uuid.UUID, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type busyLocker struct{}

func (busyLocker) WithSlotLock(ctx context.Context, _ uuid.UUID, _ func(ctx context.Context) error) error {
	return redisclient.ErrLockNotAcquired
}
