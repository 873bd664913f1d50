package calculator

import "errors"

var (
	// ErrInvalidInput reports bad arguments: no participants, negative amounts, duplicate ids.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDivisionUndefined reports a proportional distribution against a zero base.
	ErrDivisionUndefined = errors.New("division undefined")

	// ErrUnknownParticipant reports a payer or split that references a non-member.
	ErrUnknownParticipant = errors.New("unknown participant")

	// ErrBalanceImbalance reports net balances that do not sum to zero.
	ErrBalanceImbalance = errors.New("balance imbalance")
)
