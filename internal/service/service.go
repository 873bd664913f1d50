// Package service implements the splitledger.v1 Connect services.
//
// Handlers read the caller from the auth interceptor's context once and pass the
// user ID explicitly to everything below them. Balances are never cached; every
// read loads a snapshot from the store and runs the calculator over it.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

var (
	errUnauthenticated = errors.New("authentication required")
	errNotMember       = errors.New("not a member of this group")
)

type options struct {
	optimizer       calculator.Optimizer
	strategy        string
	defaultCurrency string
	metrics         *metrics.Metrics
}

// Option configures the services.
type Option func(*options)

// WithOptimizer selects the settlement strategy used for suggested settlements.
func WithOptimizer(name string, o calculator.Optimizer) Option {
	return func(opts *options) {
		opts.strategy = name
		opts.optimizer = o
	}
}

// WithDefaultCurrency sets the currency of groups created without one.
func WithDefaultCurrency(currency string) Option {
	return func(opts *options) { opts.defaultCurrency = currency }
}

// WithMetrics records ledger activity.
func WithMetrics(m *metrics.Metrics) Option {
	return func(opts *options) { opts.metrics = m }
}

func newOptions(opts []Option) options {
	o := options{
		optimizer:       calculator.Greedy{},
		strategy:        calculator.StrategyGreedy,
		defaultCurrency: "USD",
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// currentUser returns the authenticated caller.
func currentUser(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", connect.NewError(connect.CodeUnauthenticated, errUnauthenticated)
	}
	return userID, nil
}

// memberGroup loads a group and checks that userID belongs to it.
func memberGroup(ctx context.Context, store storage.Store, groupID, userID string) (*models.Group, error) {
	if groupID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("group_id required"))
	}
	group, err := store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if !group.HasMember(userID) {
		slog.Warn("Rejected non-member", "group_id", groupID, "user_id", userID)
		return nil, connect.NewError(connect.CodePermissionDenied, fmt.Errorf("%w: %s", errNotMember, groupID))
	}
	return group, nil
}

// toConnectError maps domain and storage errors to Connect codes.
// Calculator errors map to InvalidArgument; callers aggregating stored data
// wrap those as Internal themselves.
func toConnectError(err error) error {
	var connectErr *connect.Error
	switch {
	case errors.As(err, &connectErr):
		return err
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, models.ErrInvalidTransition):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, calculator.ErrInvalidInput),
		errors.Is(err, calculator.ErrDivisionUndefined),
		errors.Is(err, calculator.ErrUnknownParticipant):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
