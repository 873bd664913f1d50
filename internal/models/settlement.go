package models

import (
	"errors"
	"fmt"

	"github.com/mmynk/splitledger/internal/money"
)

// SettlementStatus is the approval state of a recorded settlement.
type SettlementStatus string

const (
	SettlementPending   SettlementStatus = "pending"
	SettlementCompleted SettlementStatus = "completed"
	SettlementCancelled SettlementStatus = "cancelled"
)

// ErrInvalidTransition is returned when a settlement cannot move to the requested status.
var ErrInvalidTransition = errors.New("invalid settlement status transition")

// Settlement represents a payment between group members to clear debts.
// Only completed settlements affect balances.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// GroupID is the group this settlement belongs to.
	GroupID string

	// FromUserID is the member who pays (debtor settling up).
	FromUserID string

	// ToUserID is the member who receives payment (creditor being paid).
	ToUserID string

	// Amount is the payment amount, in Currency.
	Amount   money.Money
	Currency string

	Status SettlementStatus

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64

	// CompletedAt is set when the settlement reaches SettlementCompleted.
	CompletedAt int64

	// CreatedBy is the user ID who recorded this settlement.
	CreatedBy string

	// Note is an optional description for the settlement.
	Note string
}

// Transition moves the settlement to next. Only pending settlements can change
// state, and only to completed or cancelled.
func (s *Settlement) Transition(next SettlementStatus, at int64) error {
	if s.Status != SettlementPending {
		return fmt.Errorf("%w: settlement %s is %s", ErrInvalidTransition, s.ID, s.Status)
	}
	switch next {
	case SettlementCompleted:
		s.CompletedAt = at
	case SettlementCancelled:
	default:
		return fmt.Errorf("%w: cannot move to %q", ErrInvalidTransition, next)
	}
	s.Status = next
	return nil
}
