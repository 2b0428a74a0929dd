package booking

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailableSlots_OnlyOpenForDoctorAndDay_Ascending(t *testing.T) {
	store := newMemStore()
	doctorID := uuid.New()
	otherDoctor := uuid.New()
	otherDay := testDay.AddDate(0, 0, 1)

	// Inserted out of order on purpose.
	late := store.addSlot(doctorID, testDay, 14, 0, SlotOpen)
	early := store.addSlot(doctorID, testDay, 9, 0, SlotOpen)
	mid := store.addSlot(doctorID, testDay, 11, 30, SlotOpen)
	store.addSlot(doctorID, testDay, 10, 0, SlotTaken)
	store.addSlot(doctorID, testDay, 10, 30, SlotUnavailable)
	store.addSlot(otherDoctor, testDay, 9, 0, SlotOpen)
	store.addSlot(doctorID, otherDay, 9, 0, SlotOpen)

	queries := NewQueries(store)

	slots, err := queries.AvailableSlots(context.Background(), doctorID, testDay)
	require.NoError(t, err)

	require.Len(t, slots, 3)
	assert.Equal(t, early.ID, slots[0].ID)
	assert.Equal(t, mid.ID, slots[1].ID)
	assert.Equal(t, late.ID, slots[2].ID)
}

func TestReservationByID(t *testing.T) {
	store := newMemStore()
	slot := store.addSlot(uuid.New(), testDay, 9, 0, SlotOpen)
	engine := newTestEngine(store)
	queries := NewQueries(store)

	detail, err := engine.Create(context.Background(), slot.ID, "Alice", "09012345678")
	require.NoError(t, err)

	got, err := queries.ReservationByID(context.Background(), detail.ID)
	require.NoError(t, err)
	assert.Equal(t, detail.ID, got.ID)
	assert.Equal(t, slot.ID, got.Slot.ID)
	assert.Equal(t, "Alice", got.PatientName)
}

func TestReservationByID_NotFound(t *testing.T) {
	queries := NewQueries(newMemStore())

	_, err := queries.ReservationByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestReservationsByStatus(t *testing.T) {
	store := newMemStore()
	doctorID := uuid.New()
	first := store.addSlot(doctorID, testDay, 9, 0, SlotOpen)
	second := store.addSlot(doctorID, testDay, 9, 30, SlotOpen)
	engine := newTestEngine(store)
	queries := NewQueries(store)

	kept, err := engine.Create(context.Background(), first.ID, "Alice", "09012345678")
	require.NoError(t, err)
	time.Sleep(time.Millisecond)
	dropped, err := engine.Create(context.Background(), second.ID, "Bob", "08098765432")
	require.NoError(t, err)

	_, err = engine.Cancel(context.Background(), dropped.ID)
	require.NoError(t, err)

	confirmed, err := queries.ReservationsByStatus(context.Background(), ReservationConfirmed)
	require.NoError(t, err)
	require.Len(t, confirmed, 1)
	assert.Equal(t, kept.ID, confirmed[0].ID)

	canceled, err := queries.ReservationsByStatus(context.Background(), ReservationCanceled)
	require.NoError(t, err)
	require.Len(t, canceled, 1)
	assert.Equal(t, dropped.ID, canceled[0].ID)
}

func TestDoctorsByDepartment(t *testing.T) {
	store := newMemStore()
	deptA := uuid.New()
	deptB := uuid.New()
	store.departments = []Department{
		{ID: deptA, Name: "Cardiology"},
		{ID: deptB, Name: "Dermatology"},
	}
	store.doctors = []Doctor{
		{ID: uuid.New(), DepartmentID: deptA, Name: "Dr. Sato"},
		{ID: uuid.New(), DepartmentID: deptA, Name: "Dr. Tanaka"},
		{ID: uuid.New(), DepartmentID: deptB, Name: "Dr. Suzuki"},
	}

	queries := NewQueries(store)

	departments, err := queries.Departments(context.Background())
	require.NoError(t, err)
	assert.Len(t, departments, 2)

	doctors, err := queries.DoctorsByDepartment(context.Background(), deptA)
	require.NoError(t, err)
	assert.Len(t, doctors, 2)
}
