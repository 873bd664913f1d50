package service

import (
	"github.com/mmynk/splitledger/internal/api"
	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
)

func toAPIUser(u *models.User) *api.User {
	return &api.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
}

func toAPIGroup(g *models.Group) *api.Group {
	members := g.Members
	if members == nil {
		members = []string{}
	}
	return &api.Group{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		Currency:    g.Currency,
		Members:     members,
		CreatedBy:   g.CreatedBy,
		CreatedAt:   g.CreatedAt,
	}
}

func toAPIExpense(e *models.Expense) *api.Expense {
	splits := make([]api.Split, len(e.Splits))
	for i, s := range e.Splits {
		splits[i] = api.Split{
			ParticipantID: s.ParticipantID,
			Amount:        s.Amount,
			Percentage:    s.Percentage,
		}
	}

	var items []api.Item
	for _, item := range e.Items {
		items = append(items, api.Item{
			ID:         item.ID,
			Name:       item.Name,
			Price:      item.Price,
			AssignedTo: item.AssignedTo,
		})
	}

	return &api.Expense{
		ID:          e.ID,
		GroupID:     e.GroupID,
		Title:       e.Title,
		Description: e.Description,
		Category:    e.Category,
		PayerID:     e.PayerID,
		Amount:      e.Amount,
		Tax:         e.Tax,
		Tip:         e.Tip,
		Total:       e.Total(),
		Currency:    e.Currency,
		SplitMethod: e.SplitMethod,
		Splits:      splits,
		Items:       items,
		Date:        e.Date,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

func toAPISettlement(s *models.Settlement) *api.Settlement {
	return &api.Settlement{
		ID:          s.ID,
		GroupID:     s.GroupID,
		FromUserID:  s.FromUserID,
		ToUserID:    s.ToUserID,
		Amount:      s.Amount,
		Currency:    s.Currency,
		Status:      string(s.Status),
		Note:        s.Note,
		CreatedBy:   s.CreatedBy,
		CreatedAt:   s.CreatedAt,
		CompletedAt: s.CompletedAt,
	}
}

func toAPISplits(splits []calculator.Split) []api.Split {
	out := make([]api.Split, len(splits))
	for i, s := range splits {
		out[i] = api.Split{
			ParticipantID: s.ParticipantID,
			Amount:        s.Amount,
			Percentage:    s.Percentage,
		}
	}
	return out
}

func fromAPISplits(splits []api.Split) []calculator.Split {
	out := make([]calculator.Split, len(splits))
	for i, s := range splits {
		out[i] = calculator.Split{
			ParticipantID: s.ParticipantID,
			Amount:        s.Amount,
			Percentage:    s.Percentage,
		}
	}
	return out
}

func toModelSplits(splits []calculator.Split) []models.Split {
	out := make([]models.Split, len(splits))
	for i, s := range splits {
		out[i] = models.Split{
			ParticipantID: s.ParticipantID,
			Amount:        s.Amount,
			Percentage:    s.Percentage,
		}
	}
	return out
}

// toAPIBalances combines three aggregations over the same members: nets from the whole
// ledger, gross debts from expenses alone and repayments from completed settlements alone.
func toAPIBalances(nets, expenseDebts, repayments []calculator.Balance) []api.Balance {
	out := make([]api.Balance, len(nets))
	for i, b := range nets {
		out[i] = api.Balance{
			ParticipantID: b.ParticipantID,
			Net:           b.Net,
			Owes:          toAPIDebts(expenseDebts[i].Owes),
			OwedBy:        toAPIDebts(expenseDebts[i].OwedBy),
			// In the settlement-only view the payer is "owed by" the recipient.
			Paid:     toAPIDebts(repayments[i].OwedBy),
			Received: toAPIDebts(repayments[i].Owes),
		}
	}
	return out
}

func toAPIDebts(debts []calculator.Debt) []api.Debt {
	out := make([]api.Debt, len(debts))
	for i, d := range debts {
		out[i] = api.Debt{ParticipantID: d.CounterpartyID, Amount: d.Amount}
	}
	return out
}

func toAPISuggestions(settlements []calculator.Settlement, currency string) []api.SuggestedSettlement {
	out := make([]api.SuggestedSettlement, len(settlements))
	for i, s := range settlements {
		out[i] = api.SuggestedSettlement{
			FromUserID: s.FromID,
			ToUserID:   s.ToID,
			Amount:     s.Amount,
			Currency:   currency,
		}
	}
	return out
}

// ledgerView converts stored expenses and completed settlements into the calculator's input.
// A completed settlement counts as an expense paid by the debtor and owed entirely by the creditor.
func ledgerView(expenses []*models.Expense, settlements []*models.Settlement) []calculator.ExpenseForBalance {
	view := make([]calculator.ExpenseForBalance, 0, len(expenses)+len(settlements))
	for _, e := range expenses {
		splits := make([]calculator.Split, len(e.Splits))
		for i, s := range e.Splits {
			splits[i] = calculator.Split{ParticipantID: s.ParticipantID, Amount: s.Amount}
		}
		view = append(view, calculator.ExpenseForBalance{
			ID:      e.ID,
			PayerID: e.PayerID,
			Amount:  e.Amount,
			Tax:     e.Tax,
			Tip:     e.Tip,
			Splits:  splits,
		})
	}
	for _, s := range settlements {
		if s.Status != models.SettlementCompleted {
			continue
		}
		view = append(view, calculator.ExpenseForBalance{
			ID:      "settlement:" + s.ID,
			PayerID: s.FromUserID,
			Amount:  s.Amount,
			Splits:  []calculator.Split{{ParticipantID: s.ToUserID, Amount: s.Amount}},
		})
	}
	return view
}
