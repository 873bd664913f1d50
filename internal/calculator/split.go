package calculator

import (
	"fmt"

	"github.com/mmynk/splitledger/internal/money"
)

// Method selects how an expense amount is divided among participants.
type Method string

const (
	MethodEqual        Method = "equal"
	MethodPercentage   Method = "percentage"
	MethodCustom       Method = "custom"
	MethodItemSpecific Method = "item-specific"
)

// ParseMethod validates a method name.
func ParseMethod(s string) (Method, error) {
	switch m := Method(s); m {
	case MethodEqual, MethodPercentage, MethodCustom, MethodItemSpecific:
		return m, nil
	}
	return "", fmt.Errorf("%w: unknown split method %q", ErrInvalidInput, s)
}

// Split is one participant's share of an expense.
type Split struct {
	ParticipantID string
	Amount        money.Money
	// Percentage is set only for percentage splits.
	Percentage *money.Money
}

// PercentageShare assigns a percentage of the amount to a participant.
type PercentageShare struct {
	ParticipantID string
	Percentage    money.Money
}

// CustomShare assigns an explicit amount to a participant.
type CustomShare struct {
	ParticipantID string
	Amount        money.Money
}

// Item is a line item shared equally by the participants assigned to it.
type Item struct {
	Description  string
	Amount       money.Money
	Participants []string
}

// Params carries the method-specific inputs of ComputeSplits.
// Only the field matching the chosen method is read.
type Params struct {
	Percentages []PercentageShare
	Amounts     []CustomShare
	Items       []Item
}

// ComputeSplits divides amount according to method and then distributes tax and tip
// proportionally on top of the base shares.
//
// The result is not validated against the expense total; callers must run
// ValidateSplitSum before persisting, since percentage splits may legitimately
// come back short when the percentages do not add up to 100.
func ComputeSplits(method Method, amount, tax, tip money.Money, participants []string, params Params) ([]Split, error) {
	if amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount %s is negative", ErrInvalidInput, amount)
	}

	var (
		base []Split
		err  error
	)
	switch method {
	case MethodEqual:
		base, err = EqualSplit(amount, participants)
	case MethodPercentage:
		base, err = PercentageSplit(amount, params.Percentages)
	case MethodCustom:
		base, err = CustomSplit(params.Amounts)
	case MethodItemSpecific:
		base, err = ItemSplit(params.Items)
	default:
		return nil, fmt.Errorf("%w: unknown split method %q", ErrInvalidInput, method)
	}
	if err != nil {
		return nil, err
	}

	return DistributeTaxAndTip(base, tax, tip)
}

// EqualSplit divides amount evenly. Each share is rounded down to cents and the
// leftover cents all go to the first participant, so the shares sum to amount exactly.
func EqualSplit(amount money.Money, participantIDs []string) ([]Split, error) {
	if len(participantIDs) == 0 {
		return nil, fmt.Errorf("%w: must have at least one participant", ErrInvalidInput)
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount %s is negative", ErrInvalidInput, amount)
	}
	if err := checkIDs(participantIDs); err != nil {
		return nil, err
	}

	share := amount.DivFloor(len(participantIDs))
	splits := make([]Split, len(participantIDs))
	allocated := money.Zero
	for i, id := range participantIDs {
		splits[i] = Split{ParticipantID: id, Amount: share}
		allocated = allocated.Add(share)
	}
	splits[0].Amount = splits[0].Amount.Add(amount.Sub(allocated))

	return splits, nil
}

// PercentageSplit assigns round(amount × percentage / 100) to each entry.
// Rounding drift across entries is left in place; use SumSplits or ValidateSplitSum to detect it.
func PercentageSplit(amount money.Money, shares []PercentageShare) ([]Split, error) {
	if len(shares) == 0 {
		return nil, fmt.Errorf("%w: must have at least one participant", ErrInvalidInput)
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount %s is negative", ErrInvalidInput, amount)
	}

	ids := make([]string, len(shares))
	for i, s := range shares {
		if s.Percentage.IsNegative() {
			return nil, fmt.Errorf("%w: percentage for %s is negative", ErrInvalidInput, s.ParticipantID)
		}
		ids[i] = s.ParticipantID
	}
	if err := checkIDs(ids); err != nil {
		return nil, err
	}

	splits := make([]Split, len(shares))
	for i, s := range shares {
		pct := s.Percentage
		splits[i] = Split{
			ParticipantID: s.ParticipantID,
			Amount:        amount.Percent(pct),
			Percentage:    &pct,
		}
	}
	return splits, nil
}

// CustomSplit passes explicit amounts through after checking none is negative.
func CustomSplit(shares []CustomShare) ([]Split, error) {
	if len(shares) == 0 {
		return nil, fmt.Errorf("%w: must have at least one participant", ErrInvalidInput)
	}

	ids := make([]string, len(shares))
	splits := make([]Split, len(shares))
	for i, s := range shares {
		if s.Amount.IsNegative() {
			return nil, fmt.Errorf("%w: amount for %s is negative", ErrInvalidInput, s.ParticipantID)
		}
		ids[i] = s.ParticipantID
		splits[i] = Split{ParticipantID: s.ParticipantID, Amount: s.Amount}
	}
	if err := checkIDs(ids); err != nil {
		return nil, err
	}
	return splits, nil
}

// ItemSplit splits each item equally among its assigned participants (with EqualSplit's
// remainder rule) and sums the shares per participant, in order of first appearance.
func ItemSplit(items []Item) ([]Split, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: must have at least one item", ErrInvalidInput)
	}

	index := make(map[string]int)
	var splits []Split
	for _, item := range items {
		if len(item.Participants) == 0 {
			return nil, fmt.Errorf("%w: item %q has no participants", ErrInvalidInput, item.Description)
		}
		shares, err := EqualSplit(item.Amount, item.Participants)
		if err != nil {
			return nil, fmt.Errorf("item %q: %w", item.Description, err)
		}
		for _, share := range shares {
			i, ok := index[share.ParticipantID]
			if !ok {
				index[share.ParticipantID] = len(splits)
				splits = append(splits, share)
				continue
			}
			splits[i].Amount = splits[i].Amount.Add(share.Amount)
		}
	}
	return splits, nil
}

// DistributeTaxAndTip adds round(base / totalBase × (tax + tip)) to every split.
// The cents lost or gained by that rounding go to the first split with a positive
// base, so exactly tax + tip is distributed. Base shares are returned unchanged
// otherwise; the input slice is not modified.
func DistributeTaxAndTip(baseSplits []Split, tax, tip money.Money) ([]Split, error) {
	if tax.IsNegative() || tip.IsNegative() {
		return nil, fmt.Errorf("%w: tax and tip must not be negative", ErrInvalidInput)
	}

	out := copySplits(baseSplits)
	extra := tax.Add(tip)
	if extra.IsZero() {
		return out, nil
	}

	totalBase := SumSplits(baseSplits)
	if totalBase.IsZero() {
		return nil, fmt.Errorf("%w: cannot distribute %s over a zero base", ErrDivisionUndefined, extra)
	}

	distributed := money.Zero
	first := -1
	for i := range out {
		portion := extra.MulRatio(out[i].Amount.Decimal(), totalBase.Decimal())
		out[i].Amount = out[i].Amount.Add(portion)
		distributed = distributed.Add(portion)
		if first < 0 && baseSplits[i].Amount.IsPositive() {
			first = i
		}
	}
	if first >= 0 {
		out[first].Amount = out[first].Amount.Add(extra.Sub(distributed))
	}

	return out, nil
}

// ValidateSplitSum reports whether the splits add up to expectedTotal within one cent.
func ValidateSplitSum(splits []Split, expectedTotal money.Money) bool {
	return SumSplits(splits).Within(expectedTotal)
}

// SumSplits returns the realized total of splits.
func SumSplits(splits []Split) money.Money {
	total := money.Zero
	for _, s := range splits {
		total = total.Add(s.Amount)
	}
	return total
}

func copySplits(splits []Split) []Split {
	out := make([]Split, len(splits))
	for i, s := range splits {
		out[i] = s
		if s.Percentage != nil {
			pct := *s.Percentage
			out[i].Percentage = &pct
		}
	}
	return out
}

func checkIDs(ids []string) error {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id == "" {
			return fmt.Errorf("%w: empty participant id", ErrInvalidInput)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: duplicate participant %s", ErrInvalidInput, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
