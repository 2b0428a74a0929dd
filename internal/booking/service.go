package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	redisclient "github.com/medflow/clinic-booking/internal/redis"
)

// ErrSlotBusy is returned when another booking attempt holds the slot's
// advisory lock; the caller may retry shortly.
var ErrSlotBusy = errors.New("slot is currently being booked, please retry")

// Engine is the transactional core of the reservation system. Every mutation
// runs inside a single transaction that takes an exclusive row lock before
// reading, so concurrent requests against the same slot or reservation are
// strictly serialized.
type Engine struct {
	repo   Repository
	locker redisclient.Locker
	log    *zap.Logger
}

func NewEngine(repo Repository, locker redisclient.Locker, log *zap.Logger) *Engine {
	return &Engine{
		repo:   repo,
		locker: locker,
		log:    log,
	}
}

// Create books an OPEN slot for a patient. The slot row is locked for the
// whole transaction; losing racers observe the committed TAKEN status and
// fail with ErrSlotAlreadyTaken. Should a racer slip past the status check
// anyway, the unique index on live reservations rejects the insert and is
// reported as the same error.
func (e *Engine) Create(ctx context.Context, slotID uuid.UUID, patientName, patientPhone string) (*ReservationDetail, error) {
	var detail *ReservationDetail

	err := e.locker.WithSlotLock(ctx, slotID, func(lockCtx context.Context) error {
		return e.repo.InTx(lockCtx, func(tx TxStore) error {
			slot, err := tx.SlotForUpdate(lockCtx, slotID)
			if err != nil {
				if errors.Is(err, ErrSlotNotFound) {
					return err
				}
				return fmt.Errorf("load slot: %w", err)
			}

			if slot.Status != SlotOpen {
				return ErrSlotAlreadyTaken
			}

			if err := tx.SetSlotStatus(lockCtx, slot.ID, SlotTaken); err != nil {
				return fmt.Errorf("mark slot taken: %w", err)
			}

			res := &Reservation{
				ID:           uuid.New(),
				SlotID:       slot.ID,
				Status:       ReservationConfirmed,
				PatientName:  patientName,
				PatientPhone: patientPhone,
				CreatedAt:    time.Now(),
			}
			if err := tx.InsertReservation(lockCtx, res); err != nil {
				return err
			}

			slot.Status = SlotTaken
			detail = &ReservationDetail{Reservation: *res, Slot: slot}
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrSlotBusy
		}
		return nil, err
	}

	e.log.Info("reservation created",
		zap.String("reservation_id", detail.ID.String()),
		zap.String("slot_id", slotID.String()),
	)

	return detail, nil
}

// Cancel moves a confirmed reservation to canceled and returns its slot to
// OPEN, atomically. Cancellation is not idempotent: a second call fails with
// ErrReservationNotCancelable.
func (e *Engine) Cancel(ctx context.Context, reservationID uuid.UUID) (*Reservation, error) {
	var out *Reservation

	err := e.repo.InTx(ctx, func(tx TxStore) error {
		res, err := tx.ReservationForUpdate(ctx, reservationID)
		if err != nil {
			if errors.Is(err, ErrReservationNotFound) {
				return err
			}
			return fmt.Errorf("load reservation: %w", err)
		}

		if res.Status != ReservationConfirmed {
			return ErrReservationNotCancelable
		}

		if err := tx.SetReservationStatus(ctx, res.ID, ReservationCanceled); err != nil {
			return fmt.Errorf("cancel reservation: %w", err)
		}

		slot, err := tx.SlotForUpdate(ctx, res.SlotID)
		if err != nil {
			return fmt.Errorf("load slot: %w", err)
		}

		// A slot closed administratively after booking stays closed; only a
		// taken slot goes back on the market.
		if slot.Status == SlotTaken {
			if err := tx.SetSlotStatus(ctx, slot.ID, SlotOpen); err != nil {
				return fmt.Errorf("reopen slot: %w", err)
			}
		}

		res.Status = ReservationCanceled
		out = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("reservation canceled",
		zap.String("reservation_id", reservationID.String()),
		zap.String("slot_id", out.SlotID.String()),
	)

	return out, nil
}
