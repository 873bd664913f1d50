package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/internal/storage"
)

const expenseColumns = `id, group_id, title, description, category, payer_id, amount, tax, tip,
	currency, split_method, date, created_at, updated_at`

// CreateExpense persists a new expense with its splits and items.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense) error {
	now := time.Now().Unix()
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = now
	}
	if expense.UpdatedAt == 0 {
		expense.UpdatedAt = expense.CreatedAt
	}
	if expense.Date == 0 {
		expense.Date = expense.CreatedAt
	}
	if expense.Title == "" {
		expense.Title = generateTitle(splitParticipants(expense.Splits))
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO expenses (`+expenseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			expense.ID, expense.GroupID, expense.Title, expense.Description, expense.Category,
			expense.PayerID, expense.Amount, expense.Tax, expense.Tip, expense.Currency,
			expense.SplitMethod, expense.Date, expense.CreatedAt, expense.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense: %w", err)
		}
		return insertExpenseChildren(ctx, tx, expense)
	})
}

// GetExpense retrieves an expense by ID, including splits and items.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = ?`,
		expenseID,
	)
	expense, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: expense %s", storage.ErrNotFound, expenseID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	if err := s.loadExpenseChildren(ctx, expense); err != nil {
		return nil, err
	}
	return expense, nil
}

// UpdateExpense replaces an expense's fields, splits and items.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	expense.UpdatedAt = time.Now().Unix()
	if expense.Title == "" {
		expense.Title = generateTitle(splitParticipants(expense.Splits))
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE expenses SET title = ?, description = ?, category = ?, payer_id = ?, amount = ?,
			 tax = ?, tip = ?, split_method = ?, date = ?, updated_at = ?
			 WHERE id = ?`,
			expense.Title, expense.Description, expense.Category, expense.PayerID, expense.Amount,
			expense.Tax, expense.Tip, expense.SplitMethod, expense.Date, expense.UpdatedAt,
			expense.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update expense: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to update expense: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("%w: expense %s", storage.ErrNotFound, expense.ID)
		}

		// Children are replaced wholesale; item_assignments cascade from expense_items.
		if _, err := tx.ExecContext(ctx, "DELETE FROM expense_splits WHERE expense_id = ?", expense.ID); err != nil {
			return fmt.Errorf("failed to clear splits: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM expense_items WHERE expense_id = ?", expense.ID); err != nil {
			return fmt.Errorf("failed to clear items: %w", err)
		}
		return insertExpenseChildren(ctx, tx, expense)
	})
}

// DeleteExpense removes an expense. Splits and items cascade.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: expense %s", storage.ErrNotFound, expenseID)
	}
	return nil
}

// ListExpensesByGroup retrieves all expenses of a group, newest first.
func (s *SQLiteStore) ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE group_id = ? ORDER BY date DESC, created_at DESC, id`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses by group: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	for rows.Next() {
		expense, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	for _, expense := range expenses {
		if err := s.loadExpenseChildren(ctx, expense); err != nil {
			return nil, err
		}
	}
	return expenses, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExpense(row scanner) (*models.Expense, error) {
	e := &models.Expense{}
	err := row.Scan(
		&e.ID, &e.GroupID, &e.Title, &e.Description, &e.Category, &e.PayerID,
		&e.Amount, &e.Tax, &e.Tip, &e.Currency, &e.SplitMethod,
		&e.Date, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return e, nil
}

func insertExpenseChildren(ctx context.Context, tx *sql.Tx, expense *models.Expense) error {
	for i, split := range expense.Splits {
		var pct any
		if split.Percentage != nil {
			pct = split.Percentage.String()
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO expense_splits (expense_id, participant_id, amount, percentage, position)
			 VALUES (?, ?, ?, ?, ?)`,
			expense.ID, split.ParticipantID, split.Amount, pct, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert split: %w", err)
		}
	}

	for i := range expense.Items {
		item := &expense.Items[i]
		if item.ID == "" {
			item.ID = uuid.New().String()
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO expense_items (id, expense_id, name, price, position) VALUES (?, ?, ?, ?, ?)",
			item.ID, expense.ID, item.Name, item.Price, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}

		for j, participant := range item.AssignedTo {
			_, err = tx.ExecContext(ctx,
				"INSERT INTO item_assignments (item_id, participant_id, position) VALUES (?, ?, ?)",
				item.ID, participant, j,
			)
			if err != nil {
				return fmt.Errorf("failed to insert item assignment: %w", err)
			}
		}
	}
	return nil
}

func (s *SQLiteStore) loadExpenseChildren(ctx context.Context, expense *models.Expense) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT participant_id, amount, percentage FROM expense_splits WHERE expense_id = ? ORDER BY position",
		expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get splits: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var split models.Split
		var pct sql.NullString
		if err := rows.Scan(&split.ParticipantID, &split.Amount, &pct); err != nil {
			return fmt.Errorf("failed to scan split: %w", err)
		}
		if pct.Valid {
			p, err := money.Parse(pct.String)
			if err != nil {
				return fmt.Errorf("failed to parse split percentage: %w", err)
			}
			split.Percentage = &p
		}
		expense.Splits = append(expense.Splits, split)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate splits: %w", err)
	}

	itemRows, err := s.db.QueryContext(ctx,
		"SELECT id, name, price FROM expense_items WHERE expense_id = ? ORDER BY position",
		expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to get items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item models.Item
		if err := itemRows.Scan(&item.ID, &item.Name, &item.Price); err != nil {
			return fmt.Errorf("failed to scan item: %w", err)
		}
		expense.Items = append(expense.Items, item)
	}
	if err := itemRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate items: %w", err)
	}

	for i := range expense.Items {
		item := &expense.Items[i]
		assignRows, err := s.db.QueryContext(ctx,
			"SELECT participant_id FROM item_assignments WHERE item_id = ? ORDER BY position",
			item.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to get item assignments: %w", err)
		}
		for assignRows.Next() {
			var participant string
			if err := assignRows.Scan(&participant); err != nil {
				assignRows.Close()
				return fmt.Errorf("failed to scan assignment: %w", err)
			}
			item.AssignedTo = append(item.AssignedTo, participant)
		}
		assignRows.Close()
		if err := assignRows.Err(); err != nil {
			return fmt.Errorf("failed to iterate assignments: %w", err)
		}
	}
	return nil
}

func splitParticipants(splits []models.Split) []string {
	ids := make([]string, len(splits))
	for i, s := range splits {
		ids[i] = s.ParticipantID
	}
	return ids
}
