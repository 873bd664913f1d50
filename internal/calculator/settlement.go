package calculator

import (
	"fmt"
	"sort"

	"github.com/mmynk/splitledger/internal/money"
)

// Settlement is a suggested payment from a debtor to a creditor.
type Settlement struct {
	FromID string // debtor
	ToID   string // creditor
	Amount money.Money
}

// Optimizer turns net balances into a list of payments that zeroes them.
type Optimizer interface {
	Optimize(balances []Balance) []Settlement
}

const (
	// DefaultExactMaxParticipants bounds the exact strategy's search; above it Exact falls back to Greedy.
	DefaultExactMaxParticipants = 16

	// MaxExactParticipants is the hard ceiling for Exact.MaxParticipants.
	MaxExactParticipants = 20
)

// Strategy names accepted by ParseStrategy.
const (
	StrategyGreedy = "greedy"
	StrategyExact  = "exact"
)

// ParseStrategy returns the optimizer registered under name ("greedy" or "exact").
func ParseStrategy(name string, exactMax int) (Optimizer, error) {
	switch name {
	case "", StrategyGreedy:
		return Greedy{}, nil
	case StrategyExact:
		return Exact{MaxParticipants: exactMax}, nil
	}
	return nil, fmt.Errorf("%w: unknown settlement strategy %q", ErrInvalidInput, name)
}

// OptimizeSettlements simplifies balances with the greedy strategy.
// It never fails; an already settled group yields no settlements.
func OptimizeSettlements(balances []Balance) []Settlement {
	return Greedy{}.Optimize(balances)
}

// Greedy repeatedly matches the largest creditor with the largest debtor.
//
// It is not guaranteed to reach the minimum number of payments (that problem is
// NP-hard), but it emits at most creditors+debtors-1 of them and its output is fully
// determined by the input: creditors sort descending, debtors ascending, and ties keep
// the input order.
type Greedy struct{}

type party struct {
	id     string
	amount money.Money // magnitude still to settle
}

// Optimize implements Optimizer.
func (Greedy) Optimize(balances []Balance) []Settlement {
	var creditors, debtors []party
	for _, b := range balances {
		switch {
		case b.Net.NearZero():
			// already settled
		case b.Net.IsPositive():
			creditors = append(creditors, party{id: b.ParticipantID, amount: b.Net})
		default:
			debtors = append(debtors, party{id: b.ParticipantID, amount: b.Net.Abs()})
		}
	}
	return settleGreedy(creditors, debtors)
}

func settleGreedy(creditors, debtors []party) []Settlement {
	sort.SliceStable(creditors, func(a, b int) bool {
		return creditors[a].amount.GreaterThan(creditors[b].amount)
	})
	sort.SliceStable(debtors, func(a, b int) bool {
		return debtors[a].amount.GreaterThan(debtors[b].amount)
	})

	var settlements []Settlement
	i, j := 0, 0
	for i < len(creditors) && j < len(debtors) {
		creditor := &creditors[i]
		debtor := &debtors[j]

		amount := money.Min(creditor.amount, debtor.amount)
		if !amount.NearZero() {
			settlements = append(settlements, Settlement{
				FromID: debtor.id,
				ToID:   creditor.id,
				Amount: amount,
			})
		}

		creditor.amount = creditor.amount.Sub(amount)
		debtor.amount = debtor.amount.Sub(amount)

		if creditor.amount.NearZero() {
			i++
		}
		if debtor.amount.NearZero() {
			j++
		}
	}
	return settlements
}

// Exact finds the minimum number of payments by splitting members into as many
// zero-sum subgroups as possible and settling each subgroup greedily; a subgroup of
// k members then needs at most k-1 payments. The search is exponential, so above
// MaxParticipants unsettled members it falls back to Greedy.
type Exact struct {
	MaxParticipants int
}

// Optimize implements Optimizer.
func (e Exact) Optimize(balances []Balance) []Settlement {
	limit := e.MaxParticipants
	if limit <= 0 {
		limit = DefaultExactMaxParticipants
	}
	if limit > MaxExactParticipants {
		limit = MaxExactParticipants
	}

	var ids []string
	var cents []int64
	for _, b := range balances {
		if b.Net.NearZero() {
			continue
		}
		ids = append(ids, b.ParticipantID)
		cents = append(cents, b.Net.Cents())
	}
	if len(ids) == 0 {
		return nil
	}
	if len(ids) > limit {
		return Greedy{}.Optimize(balances)
	}

	var settlements []Settlement
	for _, group := range zeroSumGroups(cents) {
		var creditors, debtors []party
		for _, idx := range group {
			amount := money.FromCents(cents[idx])
			if cents[idx] > 0 {
				creditors = append(creditors, party{id: ids[idx], amount: amount})
			} else {
				debtors = append(debtors, party{id: ids[idx], amount: amount.Abs()})
			}
		}
		settlements = append(settlements, settleGreedy(creditors, debtors)...)
	}
	return settlements
}

// zeroSumGroups partitions indexes of values into the maximum number of groups
// that each sum to zero. If the values do not sum to zero overall, the remainder
// ends up in the last group.
func zeroSumGroups(values []int64) [][]int {
	n := len(values)
	full := 1<<n - 1

	sums := make([]int64, full+1)
	for mask := 1; mask <= full; mask++ {
		low := lowestBit(mask)
		sums[mask] = sums[mask&^(1<<low)] + values[low]
	}

	// best[mask]: max number of zero-sum prefixes over orderings of mask.
	// last[mask]: element removed to reach that optimum.
	best := make([]int, full+1)
	last := make([]int, full+1)
	for mask := 1; mask <= full; mask++ {
		best[mask] = -1
		for i := 0; i < n; i++ {
			if mask&(1<<i) == 0 {
				continue
			}
			if v := best[mask&^(1<<i)]; v > best[mask] {
				best[mask] = v
				last[mask] = i
			}
		}
		if sums[mask] == 0 {
			best[mask]++
		}
	}

	// Recover the ordering, then cut it wherever the running mask sums to zero.
	order := make([]int, 0, n)
	for mask := full; mask != 0; mask &^= 1 << last[mask] {
		order = append(order, last[mask])
	}

	var groups [][]int
	var current []int
	mask := 0
	for k := len(order) - 1; k >= 0; k-- {
		idx := order[k]
		mask |= 1 << idx
		current = append(current, idx)
		if sums[mask] == 0 {
			groups = append(groups, current)
			current = nil
		}
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	return groups
}

func lowestBit(mask int) int {
	i := 0
	for mask&1 == 0 {
		mask >>= 1
		i++
	}
	return i
}

// ApplySettlements returns each member's net balance after the settlements are paid.
func ApplySettlements(balances []Balance, settlements []Settlement) map[string]money.Money {
	residual := make(map[string]money.Money, len(balances))
	for _, b := range balances {
		residual[b.ParticipantID] = residual[b.ParticipantID].Add(b.Net)
	}
	for _, s := range settlements {
		residual[s.FromID] = residual[s.FromID].Add(s.Amount)
		residual[s.ToID] = residual[s.ToID].Sub(s.Amount)
	}
	return residual
}
