package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/api"
	"github.com/mmynk/splitledger/internal/api/apiconnect"
	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/internal/storage"
)

var _ apiconnect.ExpenseServiceHandler = (*ExpenseService)(nil)

// ExpenseService implements the Connect ExpenseService
type ExpenseService struct {
	store storage.Store
	opts  options
}

// NewExpenseService creates a new ExpenseService with the given storage backend.
func NewExpenseService(store storage.Store, opts ...Option) *ExpenseService {
	return &ExpenseService{store: store, opts: newOptions(opts)}
}

// splitPlan is the result of running a SplitInput through the calculator.
type splitPlan struct {
	method calculator.Method
	amount money.Money
	splits []calculator.Split
}

func (p splitPlan) total(in api.SplitInput) money.Money {
	return money.Sum(p.amount, in.Tax, in.Tip)
}

// planSplits computes the shares described by in. For item-specific splits a zero
// amount is taken to be the sum of the item prices.
func planSplits(in api.SplitInput) (splitPlan, error) {
	method, err := calculator.ParseMethod(in.Method)
	if err != nil {
		return splitPlan{}, err
	}

	params := calculator.Params{}
	for _, p := range in.Percentages {
		params.Percentages = append(params.Percentages, calculator.PercentageShare{
			ParticipantID: p.ParticipantID,
			Percentage:    p.Percentage,
		})
	}
	for _, a := range in.Amounts {
		params.Amounts = append(params.Amounts, calculator.CustomShare{
			ParticipantID: a.ParticipantID,
			Amount:        a.Amount,
		})
	}
	amount := in.Amount
	itemTotal := money.Zero
	for _, item := range in.Items {
		params.Items = append(params.Items, calculator.Item{
			Description:  item.Name,
			Amount:       item.Price,
			Participants: item.AssignedTo,
		})
		itemTotal = itemTotal.Add(item.Price)
	}
	if method == calculator.MethodItemSpecific && amount.IsZero() {
		amount = itemTotal
	}

	splits, err := calculator.ComputeSplits(method, amount, in.Tax, in.Tip, in.Participants, params)
	if err != nil {
		return splitPlan{}, err
	}
	return splitPlan{method: method, amount: amount, splits: splits}, nil
}

// ComputeSplits previews the shares for an expense without storing it.
func (s *ExpenseService) ComputeSplits(ctx context.Context, req *connect.Request[api.ComputeSplitsRequest]) (*connect.Response[api.ComputeSplitsResponse], error) {
	slog.Info("ComputeSplits request received",
		"method", req.Msg.Method,
		"amount", req.Msg.Amount,
	)

	plan, err := planSplits(req.Msg.SplitInput)
	if err != nil {
		slog.Error("ComputeSplits failed", "error", err)
		return nil, toConnectError(err)
	}

	total := plan.total(req.Msg.SplitInput)
	return connect.NewResponse(&api.ComputeSplitsResponse{
		Splits: toAPISplits(plan.splits),
		Total:  total,
		Sum:    calculator.SumSplits(plan.splits),
		Valid:  calculator.ValidateSplitSum(plan.splits, total),
	}), nil
}

// ValidateSplits checks that a set of shares adds up to the expected total.
func (s *ExpenseService) ValidateSplits(ctx context.Context, req *connect.Request[api.ValidateSplitsRequest]) (*connect.Response[api.ValidateSplitsResponse], error) {
	splits := fromAPISplits(req.Msg.Splits)
	sum := calculator.SumSplits(splits)
	return connect.NewResponse(&api.ValidateSplitsResponse{
		Valid:      calculator.ValidateSplitSum(splits, req.Msg.ExpectedTotal),
		Sum:        sum,
		Difference: sum.Sub(req.Msg.ExpectedTotal),
	}), nil
}

// expenseDraft carries the editable fields shared by create and update.
type expenseDraft struct {
	title       string
	description string
	category    string
	payerID     string
	date        int64
	input       api.SplitInput
}

// buildExpense runs the split calculation, the sum check and the membership checks
// and fills expense with the result. Nothing is stored.
func buildExpense(group *models.Group, userID string, d expenseDraft, expense *models.Expense) error {
	plan, err := planSplits(d.input)
	if err != nil {
		return err
	}

	total := plan.total(d.input)
	if !calculator.ValidateSplitSum(plan.splits, total) {
		return fmt.Errorf("%w: splits sum to %s, expected %s",
			calculator.ErrInvalidInput, calculator.SumSplits(plan.splits), total)
	}

	payerID := d.payerID
	if payerID == "" {
		payerID = userID
	}
	if !group.HasMember(payerID) {
		return fmt.Errorf("%w: payer %s is not in group %s", calculator.ErrUnknownParticipant, payerID, group.ID)
	}
	for _, split := range plan.splits {
		if !group.HasMember(split.ParticipantID) {
			return fmt.Errorf("%w: participant %s is not in group %s",
				calculator.ErrUnknownParticipant, split.ParticipantID, group.ID)
		}
	}

	var items []models.Item
	if plan.method == calculator.MethodItemSpecific {
		for _, item := range d.input.Items {
			items = append(items, models.Item{
				Name:       strings.TrimSpace(item.Name),
				Price:      item.Price,
				AssignedTo: item.AssignedTo,
			})
		}
	}

	expense.GroupID = group.ID
	expense.Title = strings.TrimSpace(d.title)
	expense.Description = d.description
	expense.Category = models.NormalizeCategory(d.category)
	expense.PayerID = payerID
	expense.Amount = plan.amount
	expense.Tax = d.input.Tax
	expense.Tip = d.input.Tip
	expense.Currency = group.Currency
	expense.SplitMethod = string(plan.method)
	expense.Splits = toModelSplits(plan.splits)
	expense.Items = items
	if d.date != 0 {
		expense.Date = d.date
	}
	return nil
}

// CreateExpense computes, validates and stores a new expense in a group.
func (s *ExpenseService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("CreateExpense request received",
		"group_id", req.Msg.GroupID,
		"method", req.Msg.Method,
		"user_id", userID,
	)

	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, err
	}

	expense := &models.Expense{}
	err = buildExpense(group, userID, expenseDraft{
		title:       req.Msg.Title,
		description: req.Msg.Description,
		category:    req.Msg.Category,
		payerID:     req.Msg.PayerID,
		date:        req.Msg.Date,
		input:       req.Msg.SplitInput,
	}, expense)
	if err != nil {
		slog.Error("CreateExpense failed - invalid expense", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	if err := s.store.CreateExpense(ctx, expense); err != nil {
		slog.Error("CreateExpense failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}
	s.opts.metrics.ExpenseRecorded(expense.SplitMethod)

	slog.Info("Expense created",
		"expense_id", expense.ID,
		"group_id", group.ID,
		"total", expense.Total(),
	)

	return connect.NewResponse(&api.CreateExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// memberExpense loads an expense and checks that userID belongs to its group.
func (s *ExpenseService) memberExpense(ctx context.Context, expenseID, userID string) (*models.Expense, *models.Group, error) {
	if expenseID == "" {
		return nil, nil, connect.NewError(connect.CodeInvalidArgument, errors.New("expense_id required"))
	}
	expense, err := s.store.GetExpense(ctx, expenseID)
	if err != nil {
		return nil, nil, toConnectError(err)
	}
	group, err := memberGroup(ctx, s.store, expense.GroupID, userID)
	if err != nil {
		return nil, nil, err
	}
	return expense, group, nil
}

// GetExpense retrieves an expense by ID.
func (s *ExpenseService) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetExpense request received", "expense_id", req.Msg.ExpenseID)

	expense, _, err := s.memberExpense(ctx, req.Msg.ExpenseID, userID)
	if err != nil {
		slog.Error("GetExpense failed", "expense_id", req.Msg.ExpenseID, "error", err)
		return nil, err
	}

	return connect.NewResponse(&api.GetExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// UpdateExpense recomputes and replaces an existing expense.
func (s *ExpenseService) UpdateExpense(ctx context.Context, req *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("UpdateExpense request received",
		"expense_id", req.Msg.ExpenseID,
		"method", req.Msg.Method,
	)

	expense, group, err := s.memberExpense(ctx, req.Msg.ExpenseID, userID)
	if err != nil {
		slog.Error("UpdateExpense failed", "expense_id", req.Msg.ExpenseID, "error", err)
		return nil, err
	}

	err = buildExpense(group, userID, expenseDraft{
		title:       req.Msg.Title,
		description: req.Msg.Description,
		category:    req.Msg.Category,
		payerID:     req.Msg.PayerID,
		date:        req.Msg.Date,
		input:       req.Msg.SplitInput,
	}, expense)
	if err != nil {
		slog.Error("UpdateExpense failed - invalid expense", "expense_id", expense.ID, "error", err)
		return nil, toConnectError(err)
	}

	if err := s.store.UpdateExpense(ctx, expense); err != nil {
		slog.Error("UpdateExpense failed", "expense_id", expense.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Expense updated", "expense_id", expense.ID, "total", expense.Total())
	return connect.NewResponse(&api.UpdateExpenseResponse{Expense: toAPIExpense(expense)}), nil
}

// DeleteExpense removes an expense by ID.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("DeleteExpense request received", "expense_id", req.Msg.ExpenseID)

	expense, _, err := s.memberExpense(ctx, req.Msg.ExpenseID, userID)
	if err != nil {
		slog.Error("DeleteExpense failed", "expense_id", req.Msg.ExpenseID, "error", err)
		return nil, err
	}

	if err := s.store.DeleteExpense(ctx, expense.ID); err != nil {
		slog.Error("DeleteExpense failed", "expense_id", expense.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Expense deleted", "expense_id", expense.ID, "group_id", expense.GroupID)
	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}

// ListExpenses retrieves all expenses of a group, newest first.
func (s *ExpenseService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ListExpenses request received", "group_id", req.Msg.GroupID)

	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, err
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, group.ID)
	if err != nil {
		slog.Error("ListExpenses failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*api.Expense, len(expenses))
	for i, e := range expenses {
		out[i] = toAPIExpense(e)
	}

	slog.Info("ListExpenses successful", "group_id", group.ID, "count", len(out))
	return connect.NewResponse(&api.ListExpensesResponse{Expenses: out}), nil
}

// ListCategories returns the built-in expense categories.
func (s *ExpenseService) ListCategories(ctx context.Context, req *connect.Request[api.ListCategoriesRequest]) (*connect.Response[api.ListCategoriesResponse], error) {
	categories := make([]api.Category, len(models.DefaultCategories))
	for i, c := range models.DefaultCategories {
		categories[i] = api.Category{ID: c.ID, Name: c.Name, Color: c.Color, Icon: c.Icon}
	}
	return connect.NewResponse(&api.ListCategoriesResponse{Categories: categories}), nil
}
