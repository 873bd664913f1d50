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
	"github.com/mmynk/splitledger/internal/storage"
)

var _ apiconnect.GroupServiceHandler = (*GroupService)(nil)

// GroupService implements the Connect GroupService
type GroupService struct {
	store storage.Store
	opts  options
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store, opts ...Option) *GroupService {
	return &GroupService{store: store, opts: newOptions(opts)}
}

// normalizeMembers trims ids and drops blanks and duplicates, keeping first occurrences.
func normalizeMembers(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	var out []string
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// CreateGroup creates a new group with the caller as its first member.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"members_count", len(req.Msg.Members),
		"user_id", userID,
	)

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("group name required"))
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Msg.Currency))
	if currency == "" {
		currency = s.opts.defaultCurrency
	}
	if len(currency) != 3 {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("invalid currency %q", req.Msg.Currency))
	}

	group := &models.Group{
		Name:        name,
		Description: strings.TrimSpace(req.Msg.Description),
		Currency:    currency,
		Members:     normalizeMembers(append([]string{userID}, req.Msg.Members...)),
		CreatedBy:   userID,
	}

	// Save to storage (generates ID and CreatedAt)
	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Group created", "group_id", group.ID, "currency", group.Currency)
	return connect.NewResponse(&api.CreateGroupResponse{Group: toAPIGroup(group)}), nil
}

// GetGroup retrieves a group by ID.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetGroup request received", "group_id", req.Msg.GroupID)

	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		slog.Error("GetGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, err
	}

	slog.Info("GetGroup successful", "group_id", group.ID, "name", group.Name)
	return connect.NewResponse(&api.GetGroupResponse{Group: toAPIGroup(group)}), nil
}

// ListGroups retrieves the caller's groups.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ListGroups request received", "user_id", userID)

	groups, err := s.store.ListGroupsForMember(ctx, userID)
	if err != nil {
		slog.Error("ListGroups failed", "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*api.Group, len(groups))
	for i, group := range groups {
		out[i] = toAPIGroup(group)
	}

	slog.Info("ListGroups successful", "count", len(out))
	return connect.NewResponse(&api.ListGroupsResponse{Groups: out}), nil
}

// UpdateGroup renames a group and replaces its description. The currency can only
// change while the group has no expenses or settlements recorded in the old one.
func (s *GroupService) UpdateGroup(ctx context.Context, req *connect.Request[api.UpdateGroupRequest]) (*connect.Response[api.UpdateGroupResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("UpdateGroup request received",
		"group_id", req.Msg.GroupID,
		"name", req.Msg.Name,
		"user_id", userID,
	)

	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Msg.Name)
	if name == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("group name required"))
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Msg.Currency))
	if currency == "" {
		currency = group.Currency
	}
	if len(currency) != 3 {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("invalid currency %q", req.Msg.Currency))
	}
	if currency != group.Currency {
		if err := s.checkNoActivity(ctx, group.ID); err != nil {
			slog.Warn("UpdateGroup rejected currency change", "group_id", group.ID, "error", err)
			return nil, err
		}
	}

	group.Name = name
	group.Description = strings.TrimSpace(req.Msg.Description)
	group.Currency = currency
	if err := s.store.UpdateGroup(ctx, group); err != nil {
		slog.Error("UpdateGroup failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Group updated", "group_id", group.ID, "currency", group.Currency)
	return connect.NewResponse(&api.UpdateGroupResponse{Group: toAPIGroup(group)}), nil
}

// checkNoActivity fails with FailedPrecondition once a group has expenses or settlements.
func (s *GroupService) checkNoActivity(ctx context.Context, groupID string) error {
	expenses, err := s.store.ListExpensesByGroup(ctx, groupID)
	if err != nil {
		return toConnectError(err)
	}
	settlements, err := s.store.ListSettlementsByGroup(ctx, groupID)
	if err != nil {
		return toConnectError(err)
	}
	if len(expenses) > 0 || len(settlements) > 0 {
		return connect.NewError(connect.CodeFailedPrecondition,
			errors.New("currency cannot change after expenses or settlements are recorded"))
	}
	return nil
}

// AddMembers appends members to a group. Existing members are ignored.
func (s *GroupService) AddMembers(ctx context.Context, req *connect.Request[api.AddMembersRequest]) (*connect.Response[api.AddMembersResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("AddMembers request received",
		"group_id", req.Msg.GroupID,
		"members_count", len(req.Msg.Members),
	)

	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, err
	}

	members := normalizeMembers(req.Msg.Members)
	if len(members) == 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("at least one member required"))
	}

	if err := s.store.AddGroupMembers(ctx, group.ID, members); err != nil {
		slog.Error("AddMembers failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	// Fetch updated group to get the final member order
	updated, err := s.store.GetGroup(ctx, group.ID)
	if err != nil {
		slog.Error("Failed to fetch updated group", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Members added", "group_id", group.ID, "members_count", len(updated.Members))
	return connect.NewResponse(&api.AddMembersResponse{Group: toAPIGroup(updated)}), nil
}

// DeleteGroup removes a group with its expenses and settlements. Only the creator may delete it.
func (s *GroupService) DeleteGroup(ctx context.Context, req *connect.Request[api.DeleteGroupRequest]) (*connect.Response[api.DeleteGroupResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("DeleteGroup request received", "group_id", req.Msg.GroupID)

	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, err
	}
	if group.CreatedBy != userID {
		return nil, connect.NewError(connect.CodePermissionDenied, errors.New("only the group creator can delete it"))
	}

	if err := s.store.DeleteGroup(ctx, group.ID); err != nil {
		slog.Error("DeleteGroup failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Group deleted", "group_id", group.ID)
	return connect.NewResponse(&api.DeleteGroupResponse{}), nil
}

// GetGroupBalances aggregates every expense and completed settlement of a group
// into per-member balances and suggests the payments that would settle them.
// Net covers both; the pairwise Owes/OwedBy lists cover expenses only and completed
// settlements are reported separately as Paid/Received.
func (s *GroupService) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	groupID := req.Msg.GroupID
	slog.Info("GetGroupBalances request received", "group_id", groupID)

	group, err := memberGroup(ctx, s.store, groupID, userID)
	if err != nil {
		slog.Error("GetGroupBalances failed - group not accessible", "group_id", groupID, "error", err)
		return nil, err
	}

	expenses, err := s.store.ListExpensesByGroup(ctx, group.ID)
	if err != nil {
		slog.Error("GetGroupBalances failed - could not list expenses", "group_id", groupID, "error", err)
		return nil, toConnectError(err)
	}
	settlements, err := s.store.ListSettlementsByGroup(ctx, group.ID)
	if err != nil {
		slog.Error("GetGroupBalances failed - could not list settlements", "group_id", groupID, "error", err)
		return nil, toConnectError(err)
	}

	balances, err := calculator.AggregateBalances(ledgerView(expenses, settlements), group.Members)
	var expenseDebts, repayments []calculator.Balance
	if err == nil {
		expenseDebts, err = calculator.AggregateBalances(ledgerView(expenses, nil), group.Members)
	}
	if err == nil {
		repayments, err = calculator.AggregateBalances(ledgerView(nil, settlements), group.Members)
	}
	if err != nil {
		// Stored data that fails aggregation is inconsistent, not a bad request.
		slog.Error("GetGroupBalances failed - calculation error", "group_id", groupID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	suggested := s.opts.optimizer.Optimize(balances)
	s.opts.metrics.SettlementsSuggested(s.opts.strategy, len(suggested))

	slog.Info("GetGroupBalances successful",
		"group_id", groupID,
		"expenses_count", len(expenses),
		"members_count", len(balances),
		"settlements_count", len(suggested),
		"strategy", s.opts.strategy,
	)

	return connect.NewResponse(&api.GetGroupBalancesResponse{
		GroupID:     group.ID,
		Currency:    group.Currency,
		Balances:    toAPIBalances(balances, expenseDebts, repayments),
		Settlements: toAPISuggestions(suggested, group.Currency),
		Strategy:    s.opts.strategy,
	}), nil
}
