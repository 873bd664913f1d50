package calculator

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/money"
)

func balancesOf(pairs ...string) []Balance {
	var out []Balance
	for i := 0; i < len(pairs); i += 2 {
		out = append(out, Balance{ParticipantID: pairs[i], Net: money.MustParse(pairs[i+1])})
	}
	return out
}

func transfers(settlements []Settlement) []string {
	out := make([]string, len(settlements))
	for i, s := range settlements {
		out[i] = fmt.Sprintf("%s->%s %s", s.FromID, s.ToID, s.Amount)
	}
	return out
}

func assertSettled(t *testing.T, balances []Balance, settlements []Settlement) {
	t.Helper()
	for id, residual := range ApplySettlements(balances, settlements) {
		assert.True(t, residual.NearZero(), "%s left with %s", id, residual)
	}
}

func countSides(balances []Balance) (creditors, debtors int) {
	for _, b := range balances {
		switch {
		case b.Net.NearZero():
		case b.Net.IsPositive():
			creditors++
		default:
			debtors++
		}
	}
	return creditors, debtors
}

func TestOptimizeSettlements(t *testing.T) {
	tests := []struct {
		name     string
		balances []Balance
		want     []string
	}{
		{
			name:     "scenario C: one debtor, two creditors",
			balances: balancesOf("A", "50", "B", "30", "C", "-80"),
			want:     []string{"C->A 50.00", "C->B 30.00"},
		},
		{
			name:     "largest creditor meets largest debtor first",
			balances: balancesOf("A", "-10", "B", "40", "C", "-30"),
			want:     []string{"C->B 30.00", "A->B 10.00"},
		},
		{
			name:     "both sides reach zero together",
			balances: balancesOf("A", "25", "B", "-25", "C", "10", "D", "-10"),
			want:     []string{"B->A 25.00", "D->C 10.00"},
		},
		{
			name:     "ties keep input order",
			balances: balancesOf("X", "10", "Y", "10", "P", "-10", "Q", "-10"),
			want:     []string{"P->X 10.00", "Q->Y 10.00"},
		},
		{
			name:     "single cent is still settled",
			balances: balancesOf("A", "0.01", "B", "-0.01"),
			want:     []string{"B->A 0.01"},
		},
		{
			name:     "already settled",
			balances: balancesOf("A", "0", "B", "0"),
			want:     []string{},
		},
		{
			name:     "empty",
			balances: nil,
			want:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OptimizeSettlements(tt.balances)
			assert.Equal(t, tt.want, transfers(got))
			assertSettled(t, tt.balances, got)
		})
	}
}

func TestOptimizeSettlements_DoesNotMutateInput(t *testing.T) {
	balances := balancesOf("A", "50", "B", "30", "C", "-80")
	OptimizeSettlements(balances)
	assert.Equal(t, map[string]string{"A": "50.00", "B": "30.00", "C": "-80.00"}, nets(balances))
}

func TestOptimizeSettlements_Properties(t *testing.T) {
	r := newRand(t)
	members := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	for round := 0; round < 100; round++ {
		balances, err := AggregateBalances(randomExpenses(t, r, members, 1+r.Intn(20)), members)
		require.NoError(t, err)

		settlements := OptimizeSettlements(balances)
		assertSettled(t, balances, settlements)

		creditors, debtors := countSides(balances)
		if creditors+debtors == 0 {
			assert.Empty(t, settlements)
			continue
		}
		assert.LessOrEqual(t, len(settlements), creditors+debtors-1, "round %d", round)
		for _, s := range settlements {
			assert.True(t, s.Amount.IsPositive())
			assert.NotEqual(t, s.FromID, s.ToID)
		}
	}
}

func TestExact(t *testing.T) {
	t.Run("beats greedy when a zero-sum subgroup exists", func(t *testing.T) {
		// {A, C} and {B, D, E} settle independently: 1 + 2 payments.
		balances := balancesOf("A", "5", "B", "6", "C", "-5", "D", "-4", "E", "-2")

		greedy := Greedy{}.Optimize(balances)
		exact := Exact{}.Optimize(balances)

		assert.Len(t, greedy, 4)
		assert.Len(t, exact, 3)
		assertSettled(t, balances, exact)
	})

	t.Run("matches greedy on scenario C", func(t *testing.T) {
		balances := balancesOf("A", "50", "B", "30", "C", "-80")
		exact := Exact{}.Optimize(balances)
		assert.Len(t, exact, 2)
		assertSettled(t, balances, exact)
	})

	t.Run("already settled", func(t *testing.T) {
		assert.Empty(t, Exact{}.Optimize(balancesOf("A", "0")))
	})

	t.Run("falls back to greedy above the limit", func(t *testing.T) {
		balances := balancesOf("A", "5", "B", "6", "C", "-5", "D", "-4", "E", "-2")
		got := Exact{MaxParticipants: 3}.Optimize(balances)
		assert.Equal(t, transfers(Greedy{}.Optimize(balances)), transfers(got))
	})

	t.Run("never worse than greedy", func(t *testing.T) {
		r := newRand(t)
		members := []string{"A", "B", "C", "D", "E", "F", "G"}
		for round := 0; round < 50; round++ {
			balances, err := AggregateBalances(randomExpenses(t, r, members, 1+r.Intn(10)), members)
			require.NoError(t, err)

			exact := Exact{}.Optimize(balances)
			assertSettled(t, balances, exact)
			assert.LessOrEqual(t, len(exact), len(Greedy{}.Optimize(balances)), "round %d", round)
		}
	})
}

func TestZeroSumGroups(t *testing.T) {
	groups := zeroSumGroups([]int64{500, 600, -500, -400, -200})
	require.Len(t, groups, 2)
	for _, g := range groups {
		var sum int64
		for _, idx := range g {
			sum += []int64{500, 600, -500, -400, -200}[idx]
		}
		assert.Zero(t, sum)
	}
}

func TestParseStrategy(t *testing.T) {
	o, err := ParseStrategy("greedy", 0)
	require.NoError(t, err)
	assert.IsType(t, Greedy{}, o)

	o, err = ParseStrategy("exact", 12)
	require.NoError(t, err)
	assert.Equal(t, Exact{MaxParticipants: 12}, o)

	_, err = ParseStrategy("optimal", 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
