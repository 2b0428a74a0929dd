package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Admin handles slot state changes outside the booking path, for doctor
// unavailability. It uses the same locked read-then-write discipline as the
// engine.
type Admin struct {
	repo Repository
	log  *zap.Logger
}

func NewAdmin(repo Repository, log *zap.Logger) *Admin {
	return &Admin{
		repo: repo,
		log:  log,
	}
}

// Close marks a slot DOCTOR_UNAVAILABLE unconditionally, even when a live
// reservation exists. No compensating cancellation is triggered; that is a
// deliberate policy, not an oversight.
func (a *Admin) Close(ctx context.Context, slotID uuid.UUID) (*TimeSlot, error) {
	var out *TimeSlot

	err := a.repo.InTx(ctx, func(tx TxStore) error {
		slot, err := tx.SlotForUpdate(ctx, slotID)
		if err != nil {
			if errors.Is(err, ErrSlotNotFound) {
				return err
			}
			return fmt.Errorf("load slot: %w", err)
		}

		if err := tx.SetSlotStatus(ctx, slot.ID, SlotUnavailable); err != nil {
			return fmt.Errorf("close slot: %w", err)
		}

		slot.Status = SlotUnavailable
		out = slot
		return nil
	})
	if err != nil {
		return nil, err
	}

	a.log.Info("slot closed", zap.String("slot_id", slotID.String()))

	return out, nil
}

// Open returns a slot to OPEN. The slot holds no back-reference to its
// reservation, so the live reservation check is a reverse lookup; a slot
// with a live reservation cannot be reopened.
func (a *Admin) Open(ctx context.Context, slotID uuid.UUID) (*TimeSlot, error) {
	var out *TimeSlot

	err := a.repo.InTx(ctx, func(tx TxStore) error {
		slot, err := tx.SlotForUpdate(ctx, slotID)
		if err != nil {
			if errors.Is(err, ErrSlotNotFound) {
				return err
			}
			return fmt.Errorf("load slot: %w", err)
		}

		live, err := tx.HasLiveReservation(ctx, slot.ID)
		if err != nil {
			return err
		}
		if live {
			return ErrSlotHasReservation
		}

		if err := tx.SetSlotStatus(ctx, slot.ID, SlotOpen); err != nil {
			return fmt.Errorf("open slot: %w", err)
		}

		slot.Status = SlotOpen
		out = slot
		return nil
	})
	if err != nil {
		return nil, err
	}

	a.log.Info("slot opened", zap.String("slot_id", slotID.String()))

	return out, nil
}
