package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

func scanSlot(row pgx.Row) (*TimeSlot, error) {
	var s TimeSlot

	err := row.Scan(
		&s.ID,
		&s.DoctorID,
		&s.Date,
		&s.StartTime,
		&s.EndTime,
		&s.Status,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSlotNotFound
		}
		return nil, err
	}

	return &s, nil
}

func scanReservation(row pgx.Row) (*Reservation, error) {
	var r Reservation

	err := row.Scan(
		&r.ID,
		&r.SlotID,
		&r.Status,
		&r.PatientName,
		&r.PatientPhone,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}

	return &r, nil
}

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	var specialty *string

	err := row.Scan(
		&d.ID,
		&d.DepartmentID,
		&d.Name,
		&specialty,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	d.Specialty = specialty
	return &d, nil
}

const slotColumns = `id, doctor_id, slot_date, start_time, end_time, status, created_at, updated_at`
const reservationColumns = `id, slot_id, status, patient_name, patient_phone, created_at, updated_at`

// Transactional store

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) SlotForUpdate(ctx context.Context, id uuid.UUID) (*TimeSlot, error) {
	row := t.tx.QueryRow(ctx, `
		SELECT `+slotColumns+`
		FROM slots
		WHERE id = $1
		FOR UPDATE
	`, id)
	return scanSlot(row)
}

func (t *pgTx) ReservationForUpdate(ctx context.Context, id uuid.UUID) (*Reservation, error) {
	row := t.tx.QueryRow(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE id = $1
		FOR UPDATE
	`, id)
	return scanReservation(row)
}

func (t *pgTx) SetSlotStatus(ctx context.Context, id uuid.UUID, status SlotStatus) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE slots
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
	`, id, status)
	if err != nil {
		return fmt.Errorf("update slot status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSlotNotFound
	}
	return nil
}

func (t *pgTx) SetReservationStatus(ctx context.Context, id uuid.UUID, status ReservationStatus) error {
	tag, err := t.tx.Exec(ctx, `
		UPDATE reservations
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
	`, id, status)
	if err != nil {
		return fmt.Errorf("update reservation status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrReservationNotFound
	}
	return nil
}

func (t *pgTx) InsertReservation(ctx context.Context, r *Reservation) error {
	row := t.tx.QueryRow(ctx, `
		INSERT INTO reservations (id, slot_id, status, patient_name, patient_phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING `+reservationColumns+`
	`, r.ID, r.SlotID, r.Status, r.PatientName, r.PatientPhone, r.CreatedAt)

	saved, err := scanReservation(row)
	if err != nil {
		// The partial unique index on live reservations is the last line of
		// defense against a booking race; surface it as the same conflict
		// the status pre-check reports.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrSlotAlreadyTaken
		}
		return fmt.Errorf("insert reservation: %w", err)
	}

	*r = *saved
	return nil
}

func (t *pgTx) HasLiveReservation(ctx context.Context, slotID uuid.UUID) (bool, error) {
	var exists bool
	err := t.tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM reservations
			WHERE slot_id = $1 AND status = $2
		)
	`, slotID, ReservationConfirmed).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check live reservation: %w", err)
	}
	return exists, nil
}

// InTx runs fn inside a single transaction. The ForUpdate fetches made by fn
// hold their row locks until the commit or rollback here.
func (r *PgRepository) InTx(ctx context.Context, fn func(tx TxStore) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Plain reads

func (r *PgRepository) GetSlotByID(ctx context.Context, id uuid.UUID) (*TimeSlot, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+slotColumns+`
		FROM slots
		WHERE id = $1
	`, id)
	return scanSlot(row)
}

func (r *PgRepository) GetReservationDetail(ctx context.Context, id uuid.UUID) (*ReservationDetail, error) {
	res, err := scanReservation(r.pool.QueryRow(ctx, `
		SELECT `+reservationColumns+`
		FROM reservations
		WHERE id = $1
	`, id))
	if err != nil {
		return nil, err
	}

	slot, err := r.GetSlotByID(ctx, res.SlotID)
	if err != nil {
		return nil, fmt.Errorf("load slot for reservation %s: %w", id, err)
	}

	return &ReservationDetail{Reservation: *res, Slot: slot}, nil
}

func (r *PgRepository) ListOpenSlots(ctx context.Context, doctorID uuid.UUID, day time.Time) ([]TimeSlot, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+slotColumns+`
		FROM slots
		WHERE doctor_id = $1
		  AND slot_date = $2
		  AND status = $3
		ORDER BY start_time ASC
	`, doctorID, day, SlotOpen)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []TimeSlot
	for rows.Next() {
		s, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) ListReservationsByStatus(ctx context.Context, status ReservationStatus) ([]ReservationDetail, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT r.id, r.slot_id, r.status, r.patient_name, r.patient_phone, r.created_at, r.updated_at,
		       s.id, s.doctor_id, s.slot_date, s.start_time, s.end_time, s.status, s.created_at, s.updated_at
		FROM reservations r
		JOIN slots s ON s.id = r.slot_id
		WHERE r.status = $1
		ORDER BY r.created_at ASC
	`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ReservationDetail
	for rows.Next() {
		var res Reservation
		var slot TimeSlot
		err := rows.Scan(
			&res.ID, &res.SlotID, &res.Status, &res.PatientName, &res.PatientPhone, &res.CreatedAt, &res.UpdatedAt,
			&slot.ID, &slot.DoctorID, &slot.Date, &slot.StartTime, &slot.EndTime, &slot.Status, &slot.CreatedAt, &slot.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		result = append(result, ReservationDetail{Reservation: res, Slot: &slot})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) ListDepartments(ctx context.Context) ([]Department, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, created_at
		FROM departments
		ORDER BY name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Department
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.Name, &d.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) ListDoctorsByDepartment(ctx context.Context, departmentID uuid.UUID) ([]Doctor, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, department_id, name, specialty, created_at, updated_at
		FROM doctors
		WHERE department_id = $1
		ORDER BY name ASC
	`, departmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *d)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
