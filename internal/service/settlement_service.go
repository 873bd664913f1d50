package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/api"
	"github.com/mmynk/splitledger/internal/api/apiconnect"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

var _ apiconnect.SettlementServiceHandler = (*SettlementService)(nil)

// SettlementService implements the Connect SettlementService.
// Recorded settlements start pending and only count toward balances once completed.
type SettlementService struct {
	store storage.Store
	opts  options
	now   func() time.Time
}

// NewSettlementService creates a new SettlementService with the given storage backend.
func NewSettlementService(store storage.Store, opts ...Option) *SettlementService {
	return &SettlementService{store: store, opts: newOptions(opts), now: time.Now}
}

// RecordSettlement stores a pending payment between two members of a group.
func (s *SettlementService) RecordSettlement(ctx context.Context, req *connect.Request[api.RecordSettlementRequest]) (*connect.Response[api.RecordSettlementResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	slog.Info("RecordSettlement request received",
		"group_id", msg.GroupID,
		"from", msg.FromUserID,
		"to", msg.ToUserID,
		"amount", msg.Amount,
	)

	group, err := memberGroup(ctx, s.store, msg.GroupID, userID)
	if err != nil {
		return nil, err
	}

	switch {
	case !msg.Amount.IsPositive():
		err = fmt.Errorf("amount must be positive, got %s", msg.Amount)
	case msg.FromUserID == "" || msg.ToUserID == "":
		err = errors.New("from_user_id and to_user_id required")
	case msg.FromUserID == msg.ToUserID:
		err = errors.New("cannot settle with yourself")
	case !group.HasMember(msg.FromUserID):
		err = fmt.Errorf("%s is not in group %s", msg.FromUserID, group.ID)
	case !group.HasMember(msg.ToUserID):
		err = fmt.Errorf("%s is not in group %s", msg.ToUserID, group.ID)
	}
	if err != nil {
		slog.Error("RecordSettlement failed - invalid settlement", "group_id", group.ID, "error", err)
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	settlement := &models.Settlement{
		GroupID:    group.ID,
		FromUserID: msg.FromUserID,
		ToUserID:   msg.ToUserID,
		Amount:     msg.Amount,
		Currency:   group.Currency,
		Status:     models.SettlementPending,
		CreatedAt:  s.now().Unix(),
		CreatedBy:  userID,
		Note:       msg.Note,
	}
	if err := s.store.CreateSettlement(ctx, settlement); err != nil {
		slog.Error("RecordSettlement failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}
	s.opts.metrics.SettlementTransition(string(settlement.Status))

	slog.Info("Settlement recorded", "settlement_id", settlement.ID, "group_id", group.ID)
	return connect.NewResponse(&api.RecordSettlementResponse{Settlement: toAPISettlement(settlement)}), nil
}

// CompleteSettlement marks a pending settlement as paid.
func (s *SettlementService) CompleteSettlement(ctx context.Context, req *connect.Request[api.CompleteSettlementRequest]) (*connect.Response[api.CompleteSettlementResponse], error) {
	settlement, err := s.transition(ctx, req.Msg.SettlementID, models.SettlementCompleted)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.CompleteSettlementResponse{Settlement: toAPISettlement(settlement)}), nil
}

// CancelSettlement withdraws a pending settlement.
func (s *SettlementService) CancelSettlement(ctx context.Context, req *connect.Request[api.CancelSettlementRequest]) (*connect.Response[api.CancelSettlementResponse], error) {
	settlement, err := s.transition(ctx, req.Msg.SettlementID, models.SettlementCancelled)
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.CancelSettlementResponse{Settlement: toAPISettlement(settlement)}), nil
}

// transition moves a settlement to next. Only the payer or the recipient may do so.
func (s *SettlementService) transition(ctx context.Context, settlementID string, next models.SettlementStatus) (*models.Settlement, error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("Settlement transition requested",
		"settlement_id", settlementID,
		"status", next,
		"user_id", userID,
	)

	if settlementID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("settlement_id required"))
	}
	settlement, err := s.store.GetSettlement(ctx, settlementID)
	if err != nil {
		slog.Error("Settlement transition failed", "settlement_id", settlementID, "error", err)
		return nil, toConnectError(err)
	}
	if _, err := memberGroup(ctx, s.store, settlement.GroupID, userID); err != nil {
		return nil, err
	}
	if userID != settlement.FromUserID && userID != settlement.ToUserID {
		return nil, connect.NewError(connect.CodePermissionDenied,
			errors.New("only the payer or the recipient can update a settlement"))
	}

	from := settlement.Status
	if err := settlement.Transition(next, s.now().Unix()); err != nil {
		slog.Warn("Settlement transition rejected", "settlement_id", settlementID, "error", err)
		return nil, toConnectError(err)
	}
	if err := s.store.UpdateSettlementStatus(ctx, settlement, from); err != nil {
		if errors.Is(err, models.ErrInvalidTransition) {
			slog.Warn("Settlement transition lost a race", "settlement_id", settlementID, "error", err)
		} else {
			slog.Error("Settlement transition failed", "settlement_id", settlementID, "error", err)
		}
		return nil, toConnectError(err)
	}
	s.opts.metrics.SettlementTransition(string(next))

	slog.Info("Settlement updated", "settlement_id", settlement.ID, "status", settlement.Status)
	return settlement, nil
}

// ListSettlements retrieves a group's settlements, newest first, optionally filtered by status.
func (s *SettlementService) ListSettlements(ctx context.Context, req *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	userID, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ListSettlements request received", "group_id", req.Msg.GroupID, "status", req.Msg.Status)

	status := models.SettlementStatus(req.Msg.Status)
	switch status {
	case "", models.SettlementPending, models.SettlementCompleted, models.SettlementCancelled:
	default:
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("unknown status %q", req.Msg.Status))
	}

	group, err := memberGroup(ctx, s.store, req.Msg.GroupID, userID)
	if err != nil {
		return nil, err
	}

	settlements, err := s.store.ListSettlementsByGroup(ctx, group.ID)
	if err != nil {
		slog.Error("ListSettlements failed", "group_id", group.ID, "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*api.Settlement, 0, len(settlements))
	for _, st := range settlements {
		if status != "" && st.Status != status {
			continue
		}
		out = append(out, toAPISettlement(st))
	}

	slog.Info("ListSettlements successful", "group_id", group.ID, "count", len(out))
	return connect.NewResponse(&api.ListSettlementsResponse{Settlements: out}), nil
}
