package calculator

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/money"
)

const testSeed = 20240611

func newRand(t *testing.T) *rand.Rand {
	t.Helper()
	t.Logf("seed %d", testSeed)
	return rand.New(rand.NewSource(testSeed))
}

func nets(balances []Balance) map[string]string {
	out := make(map[string]string, len(balances))
	for _, b := range balances {
		out[b.ParticipantID] = b.Net.String()
	}
	return out
}

func debts(ds []Debt) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.CounterpartyID + "=" + d.Amount.String()
	}
	return out
}

// randomExpenses builds valid expenses (splits sum to total) over members.
func randomExpenses(t *testing.T, r *rand.Rand, members []string, count int) []ExpenseForBalance {
	t.Helper()
	expenses := make([]ExpenseForBalance, count)
	for i := range expenses {
		k := 1 + r.Intn(len(members))
		perm := r.Perm(len(members))[:k]
		participants := make([]string, k)
		for j, p := range perm {
			participants[j] = members[p]
		}
		amount := money.FromCents(1 + r.Int63n(50_000))
		tax := money.FromCents(r.Int63n(2_000))
		tip := money.FromCents(r.Int63n(2_000))

		splits, err := ComputeSplits(MethodEqual, amount, tax, tip, participants, Params{})
		require.NoError(t, err)

		expenses[i] = ExpenseForBalance{
			ID:      string(rune('a' + i%26)),
			PayerID: members[r.Intn(len(members))],
			Amount:  amount,
			Tax:     tax,
			Tip:     tip,
			Splits:  splits,
		}
	}
	return expenses
}

func TestAggregateBalances(t *testing.T) {
	t.Run("scenario B: payer also participates", func(t *testing.T) {
		splits, err := ComputeSplits(MethodEqual, m("90"), m("9"), money.Zero, []string{"P1", "P2", "P3"}, Params{})
		require.NoError(t, err)

		balances, err := AggregateBalances([]ExpenseForBalance{{
			ID: "e1", PayerID: "P1", Amount: m("90"), Tax: m("9"), Splits: splits,
		}}, []string{"P1", "P2", "P3"})
		require.NoError(t, err)

		assert.Equal(t, map[string]string{"P1": "66.00", "P2": "-33.00", "P3": "-33.00"}, nets(balances))
		assert.Equal(t, []string{"P2=33.00", "P3=33.00"}, debts(balances[0].OwedBy))
		assert.Empty(t, balances[0].Owes)
		assert.Equal(t, []string{"P1=33.00"}, debts(balances[1].Owes))
		assert.Empty(t, balances[1].OwedBy)
	})

	t.Run("payer outside the splits is a pure creditor", func(t *testing.T) {
		balances, err := AggregateBalances([]ExpenseForBalance{{
			ID: "e1", PayerID: "A", Amount: m("40"),
			Splits: []Split{{ParticipantID: "B", Amount: m("20")}, {ParticipantID: "C", Amount: m("20")}},
		}}, []string{"A", "B", "C"})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"A": "40.00", "B": "-20.00", "C": "-20.00"}, nets(balances))
	})

	t.Run("pairwise relations stay gross", func(t *testing.T) {
		balances, err := AggregateBalances([]ExpenseForBalance{
			{ID: "e1", PayerID: "A", Amount: m("20"), Splits: []Split{
				{ParticipantID: "A", Amount: m("10")}, {ParticipantID: "B", Amount: m("10")},
			}},
			{ID: "e2", PayerID: "B", Amount: m("8"), Splits: []Split{
				{ParticipantID: "A", Amount: m("4")}, {ParticipantID: "B", Amount: m("4")},
			}},
			{ID: "e3", PayerID: "A", Amount: m("6"), Splits: []Split{
				{ParticipantID: "B", Amount: m("6")},
			}},
		}, []string{"A", "B"})
		require.NoError(t, err)

		assert.Equal(t, map[string]string{"A": "12.00", "B": "-12.00"}, nets(balances))
		// A owes B 4 even though B owes A 16 overall.
		assert.Equal(t, []string{"B=4.00"}, debts(balances[0].Owes))
		assert.Equal(t, []string{"B=16.00"}, debts(balances[0].OwedBy))
		assert.Equal(t, []string{"A=16.00"}, debts(balances[1].Owes))
		assert.Equal(t, []string{"A=4.00"}, debts(balances[1].OwedBy))
	})

	t.Run("members without expenses are zero", func(t *testing.T) {
		balances, err := AggregateBalances(nil, []string{"A", "B"})
		require.NoError(t, err)
		require.Len(t, balances, 2)
		assert.Equal(t, "A", balances[0].ParticipantID)
		assert.True(t, balances[0].Net.IsZero())
		assert.Empty(t, balances[0].Owes)
		assert.Empty(t, balances[0].OwedBy)
	})

	t.Run("unknown split participant", func(t *testing.T) {
		_, err := AggregateBalances([]ExpenseForBalance{{
			ID: "e1", PayerID: "A", Amount: m("10"),
			Splits: []Split{{ParticipantID: "Mallory", Amount: m("10")}},
		}}, []string{"A"})
		assert.ErrorIs(t, err, ErrUnknownParticipant)
	})

	t.Run("unknown payer", func(t *testing.T) {
		_, err := AggregateBalances([]ExpenseForBalance{{
			ID: "e1", PayerID: "Mallory", Amount: m("10"),
			Splits: []Split{{ParticipantID: "A", Amount: m("10")}},
		}}, []string{"A"})
		assert.ErrorIs(t, err, ErrUnknownParticipant)
	})

	t.Run("splits short of the total", func(t *testing.T) {
		_, err := AggregateBalances([]ExpenseForBalance{{
			ID: "e1", PayerID: "A", Amount: m("100"),
			Splits: []Split{{ParticipantID: "A", Amount: m("50")}, {ParticipantID: "B", Amount: m("49")}},
		}}, []string{"A", "B"})
		assert.ErrorIs(t, err, ErrBalanceImbalance)
	})

	t.Run("duplicate members", func(t *testing.T) {
		_, err := AggregateBalances(nil, []string{"A", "A"})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}

func TestAggregateBalances_DoesNotMutateInput(t *testing.T) {
	expenses := []ExpenseForBalance{{
		ID: "e1", PayerID: "A", Amount: m("10"),
		Splits: []Split{{ParticipantID: "A", Amount: m("5")}, {ParticipantID: "B", Amount: m("5")}},
	}}
	members := []string{"B", "A"}

	_, err := AggregateBalances(expenses, members)
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, members)
	assert.Equal(t, []string{"A=5.00", "B=5.00"}, amounts(expenses[0].Splits))
}

func TestAggregateBalances_ZeroSum(t *testing.T) {
	r := newRand(t)
	members := []string{"A", "B", "C", "D", "E", "F"}
	for round := 0; round < 50; round++ {
		expenses := randomExpenses(t, r, members, 1+r.Intn(30))
		balances, err := AggregateBalances(expenses, members)
		require.NoError(t, err)

		total := money.Zero
		for _, b := range balances {
			total = total.Add(b.Net)
		}
		require.True(t, total.NearZero(), "round %d: balances sum to %s", round, total)
	}
}

func TestAggregateBalances_OrderIndependent(t *testing.T) {
	r := newRand(t)
	members := []string{"A", "B", "C", "D", "E"}
	expenses := randomExpenses(t, r, members, 25)

	want, err := AggregateBalances(expenses, members)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		shuffled := make([]ExpenseForBalance, len(expenses))
		for j, p := range r.Perm(len(expenses)) {
			shuffled[j] = expenses[p]
		}
		got, err := AggregateBalances(shuffled, members)
		require.NoError(t, err)
		require.Len(t, got, len(want))
		for k := range want {
			assert.Equal(t, want[k].ParticipantID, got[k].ParticipantID)
			assert.Equal(t, want[k].Net.String(), got[k].Net.String())
			assert.Equal(t, debts(want[k].Owes), debts(got[k].Owes))
			assert.Equal(t, debts(want[k].OwedBy), debts(got[k].OwedBy))
		}
	}
}
