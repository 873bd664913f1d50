// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/splitledger/internal/models"
)

// ErrNotFound is wrapped by every lookup that finds no row.
var ErrNotFound = errors.New("not found")

// Store defines the interface for ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
//
// The store only persists and loads snapshots; balances are never stored and
// are recomputed from expenses and completed settlements on every read.
type Store interface {
	UserStore

	// CreateGroup persists a new group. ID and CreatedAt are populated by the store if empty.
	CreateGroup(ctx context.Context, group *models.Group) error

	// GetGroup retrieves a group and its members in join order.
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)

	// ListGroupsForMember retrieves every group the member belongs to, newest first.
	ListGroupsForMember(ctx context.Context, memberID string) ([]*models.Group, error)

	// UpdateGroup stores a group's name, description and currency. Members are untouched.
	UpdateGroup(ctx context.Context, group *models.Group) error

	// AddGroupMembers appends members to a group, ignoring ones already present.
	AddGroupMembers(ctx context.Context, groupID string, members []string) error

	// DeleteGroup removes a group with its expenses and settlements.
	DeleteGroup(ctx context.Context, groupID string) error

	// CreateExpense persists an expense with its splits and items.
	// ID, CreatedAt and UpdatedAt are populated by the store if empty.
	CreateExpense(ctx context.Context, expense *models.Expense) error

	// GetExpense retrieves an expense with its splits and items.
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// UpdateExpense replaces an existing expense, including its splits and items.
	UpdateExpense(ctx context.Context, expense *models.Expense) error

	// DeleteExpense removes an expense.
	DeleteExpense(ctx context.Context, expenseID string) error

	// ListExpensesByGroup retrieves all expenses of a group with splits and items, newest first.
	ListExpensesByGroup(ctx context.Context, groupID string) ([]*models.Expense, error)

	// CreateSettlement persists a new settlement record.
	CreateSettlement(ctx context.Context, settlement *models.Settlement) error

	// GetSettlement retrieves a settlement by ID.
	GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)

	// UpdateSettlementStatus stores the status and completion time of a settlement whose
	// stored status is still from. Otherwise it returns models.ErrInvalidTransition.
	UpdateSettlementStatus(ctx context.Context, settlement *models.Settlement, from models.SettlementStatus) error

	// ListSettlementsByGroup retrieves all settlements of a group, newest first.
	ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error)

	// Close releases any resources held by the store.
	Close() error
}

// UserStore defines user persistence, kept separate so the authenticator
// does not depend on the whole Store.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}
