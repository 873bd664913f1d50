package calculator

import (
	"fmt"

	"github.com/mmynk/splitledger/internal/money"
)

// ExpenseForBalance represents an expense with the minimal information needed for balance calculations.
type ExpenseForBalance struct {
	ID      string
	PayerID string
	Amount  money.Money // base amount, before tax and tip
	Tax     money.Money
	Tip     money.Money
	Splits  []Split
}

// Total returns amount + tax + tip.
func (e ExpenseForBalance) Total() money.Money {
	return e.Amount.Add(e.Tax).Add(e.Tip)
}

// Debt is a gross amount owed between a member and one counterparty.
type Debt struct {
	CounterpartyID string
	Amount         money.Money
}

// Balance represents the balance information for one group member.
type Balance struct {
	ParticipantID string
	Net           money.Money // Positive = owed money, Negative = owes money

	// Owes lists what this member owes each payer, summed expense by expense.
	// It is not netted against OwedBy; netting is the optimizer's job.
	Owes []Debt
	// OwedBy lists what each participant owes this member as a payer.
	OwedBy []Debt
}

// AggregateBalances folds expenses into one Balance per member.
//
// Algorithm:
//   - payer: net += amount + tax + tip
//   - every split participant: net -= split amount
//   - for splits of non-payers: participant owes payer, payer is owed by participant
//
// The result follows the order of members, and pairwise entries follow the
// counterparty's position in members, so any permutation of expenses yields the
// same output. Neither slice is modified.
func AggregateBalances(expenses []ExpenseForBalance, members []string) ([]Balance, error) {
	if err := checkIDs(members); err != nil {
		return nil, fmt.Errorf("members: %w", err)
	}

	position := make(map[string]int, len(members))
	for i, m := range members {
		position[m] = i
	}

	nets := make([]money.Money, len(members))
	// owes[i][j]: gross amount member i owes member j.
	owes := make([]map[int]money.Money, len(members))
	for i := range owes {
		owes[i] = make(map[int]money.Money)
	}

	for _, exp := range expenses {
		payer, ok := position[exp.PayerID]
		if !ok {
			return nil, fmt.Errorf("%w: payer %s of expense %s", ErrUnknownParticipant, exp.PayerID, exp.ID)
		}
		nets[payer] = nets[payer].Add(exp.Total())

		for _, split := range exp.Splits {
			p, ok := position[split.ParticipantID]
			if !ok {
				return nil, fmt.Errorf("%w: participant %s in expense %s", ErrUnknownParticipant, split.ParticipantID, exp.ID)
			}
			nets[p] = nets[p].Sub(split.Amount)
			if p != payer {
				owes[p][payer] = owes[p][payer].Add(split.Amount)
			}
		}
	}

	total := money.Sum(nets...)
	if !total.NearZero() {
		return nil, fmt.Errorf("%w: net balances sum to %s", ErrBalanceImbalance, total)
	}

	balances := make([]Balance, len(members))
	for i, id := range members {
		balances[i] = Balance{ParticipantID: id, Net: nets[i]}
	}
	for i := range members {
		for j := range members {
			amount, ok := owes[i][j]
			if !ok {
				continue
			}
			balances[i].Owes = append(balances[i].Owes, Debt{CounterpartyID: members[j], Amount: amount})
		}
	}
	for j := range members {
		for i := range members {
			amount, ok := owes[i][j]
			if !ok {
				continue
			}
			balances[j].OwedBy = append(balances[j].OwedBy, Debt{CounterpartyID: members[i], Amount: amount})
		}
	}

	return balances, nil
}
