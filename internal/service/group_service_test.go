package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/api"
	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/money"
)

func createGroup(t *testing.T, env *testEnv, owner string, members ...string) *api.Group {
	t.Helper()
	resp, err := env.groups.CreateGroup(context.Background(), as(owner, &api.CreateGroupRequest{
		Name:    "Roommates",
		Members: members,
	}))
	require.NoError(t, err)
	return resp.Msg.Group
}

func TestCreateGroup(t *testing.T) {
	env := setupTestServer(t, WithDefaultCurrency("EUR"))

	resp, err := env.groups.CreateGroup(context.Background(), as("Alice", &api.CreateGroupRequest{
		Name:    "  Roommates ",
		Members: []string{"Bob", "Alice", " Charlie ", "Bob", ""},
	}))
	require.NoError(t, err)

	group := resp.Msg.Group
	assert.NotEmpty(t, group.ID)
	assert.Equal(t, "Roommates", group.Name)
	assert.Equal(t, "EUR", group.Currency)
	assert.Equal(t, []string{"Alice", "Bob", "Charlie"}, group.Members)
	assert.Equal(t, "Alice", group.CreatedBy)
	assert.NotZero(t, group.CreatedAt)
}

func TestCreateGroup_Invalid(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	_, err := env.groups.CreateGroup(ctx, as("Alice", &api.CreateGroupRequest{Name: " "}))
	requireCode(t, err, connect.CodeInvalidArgument)

	_, err = env.groups.CreateGroup(ctx, as("Alice", &api.CreateGroupRequest{Name: "Trip", Currency: "EURO"}))
	requireCode(t, err, connect.CodeInvalidArgument)

	_, err = env.groups.CreateGroup(ctx, as("", &api.CreateGroupRequest{Name: "Trip"}))
	requireCode(t, err, connect.CodeUnauthenticated)
}

func TestGetGroup(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	group := createGroup(t, env, "Alice", "Bob")

	resp, err := env.groups.GetGroup(ctx, as("Bob", &api.GetGroupRequest{GroupID: group.ID}))
	require.NoError(t, err)
	assert.Equal(t, "USD", resp.Msg.Group.Currency)
	assert.Equal(t, []string{"Alice", "Bob"}, resp.Msg.Group.Members)

	_, err = env.groups.GetGroup(ctx, as("Mallory", &api.GetGroupRequest{GroupID: group.ID}))
	requireCode(t, err, connect.CodePermissionDenied)

	_, err = env.groups.GetGroup(ctx, as("Alice", &api.GetGroupRequest{GroupID: "nonexistent-id"}))
	requireCode(t, err, connect.CodeNotFound)

	_, err = env.groups.GetGroup(ctx, as("Alice", &api.GetGroupRequest{}))
	requireCode(t, err, connect.CodeInvalidArgument)
}

func TestListGroups(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()

	a := createGroup(t, env, "Alice", "Bob")
	b := createGroup(t, env, "Bob", "Charlie")
	createGroup(t, env, "Charlie", "Diana")

	resp, err := env.groups.ListGroups(ctx, as("Bob", &api.ListGroupsRequest{}))
	require.NoError(t, err)
	var ids []string
	for _, g := range resp.Msg.Groups {
		ids = append(ids, g.ID)
	}
	assert.ElementsMatch(t, []string{a.ID, b.ID}, ids)

	resp, err = env.groups.ListGroups(ctx, as("Zed", &api.ListGroupsRequest{}))
	require.NoError(t, err)
	assert.Empty(t, resp.Msg.Groups)
}

func TestAddMembers(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	group := createGroup(t, env, "Alice", "Bob")

	resp, err := env.groups.AddMembers(ctx, as("Bob", &api.AddMembersRequest{
		GroupID: group.ID,
		Members: []string{"Charlie", "Alice", "Diana"},
	}))
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice", "Bob", "Charlie", "Diana"}, resp.Msg.Group.Members)

	_, err = env.groups.AddMembers(ctx, as("Alice", &api.AddMembersRequest{GroupID: group.ID}))
	requireCode(t, err, connect.CodeInvalidArgument)

	_, err = env.groups.AddMembers(ctx, as("Mallory", &api.AddMembersRequest{
		GroupID: group.ID,
		Members: []string{"Mallory"},
	}))
	requireCode(t, err, connect.CodePermissionDenied)
}

func TestDeleteGroup(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	group := createGroup(t, env, "Alice", "Bob")

	_, err := env.groups.DeleteGroup(ctx, as("Bob", &api.DeleteGroupRequest{GroupID: group.ID}))
	requireCode(t, err, connect.CodePermissionDenied)

	_, err = env.groups.DeleteGroup(ctx, as("Alice", &api.DeleteGroupRequest{GroupID: group.ID}))
	require.NoError(t, err)

	_, err = env.groups.GetGroup(ctx, as("Alice", &api.GetGroupRequest{GroupID: group.ID}))
	requireCode(t, err, connect.CodeNotFound)
}

func nets(balances []api.Balance) map[string]string {
	out := make(map[string]string, len(balances))
	for _, b := range balances {
		out[b.ParticipantID] = b.Net.String()
	}
	return out
}

func TestUpdateGroup(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	group := createGroup(t, env, "Alice", "Bob")

	resp, err := env.groups.UpdateGroup(ctx, as("Bob", &api.UpdateGroupRequest{
		GroupID:     group.ID,
		Name:        " Flat 3B ",
		Description: "rent and bills",
		Currency:    "eur",
	}))
	require.NoError(t, err)
	assert.Equal(t, "Flat 3B", resp.Msg.Group.Name)
	assert.Equal(t, "rent and bills", resp.Msg.Group.Description)
	assert.Equal(t, "EUR", resp.Msg.Group.Currency)
	assert.Equal(t, []string{"Alice", "Bob"}, resp.Msg.Group.Members)

	got, err := env.groups.GetGroup(ctx, as("Alice", &api.GetGroupRequest{GroupID: group.ID}))
	require.NoError(t, err)
	assert.Equal(t, "Flat 3B", got.Msg.Group.Name)
	assert.Equal(t, "EUR", got.Msg.Group.Currency)

	t.Run("invalid", func(t *testing.T) {
		_, err := env.groups.UpdateGroup(ctx, as("Alice", &api.UpdateGroupRequest{GroupID: group.ID, Name: "  "}))
		requireCode(t, err, connect.CodeInvalidArgument)

		_, err = env.groups.UpdateGroup(ctx, as("Alice", &api.UpdateGroupRequest{GroupID: group.ID, Name: "x", Currency: "EURO"}))
		requireCode(t, err, connect.CodeInvalidArgument)

		_, err = env.groups.UpdateGroup(ctx, as("Mallory", &api.UpdateGroupRequest{GroupID: group.ID, Name: "x"}))
		requireCode(t, err, connect.CodePermissionDenied)

		_, err = env.groups.UpdateGroup(ctx, as("Alice", &api.UpdateGroupRequest{GroupID: "nope", Name: "x"}))
		requireCode(t, err, connect.CodeNotFound)
	})

	t.Run("currency is fixed once expenses exist", func(t *testing.T) {
		customExpense(t, env, group.ID, "Alice", "Bob", "10")

		_, err := env.groups.UpdateGroup(ctx, as("Alice", &api.UpdateGroupRequest{
			GroupID:  group.ID,
			Name:     "Flat 3B",
			Currency: "USD",
		}))
		requireCode(t, err, connect.CodeFailedPrecondition)

		// Renaming alone is still allowed.
		resp, err := env.groups.UpdateGroup(ctx, as("Alice", &api.UpdateGroupRequest{
			GroupID: group.ID,
			Name:    "Flat 3C",
		}))
		require.NoError(t, err)
		assert.Equal(t, "Flat 3C", resp.Msg.Group.Name)
		assert.Equal(t, "EUR", resp.Msg.Group.Currency)
		assert.Empty(t, resp.Msg.Group.Description)
	})
}

func TestGetGroupBalances(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	group := createGroup(t, env, "Alice", "Bob", "Charlie")

	// Alice pays 90 for everyone; Bob pays 30 for Alice and Charlie.
	_, err := env.expenses.CreateExpense(ctx, as("Alice", &api.CreateExpenseRequest{
		GroupID: group.ID,
		Title:   "Groceries",
		SplitInput: api.SplitInput{
			Method:       "equal",
			Amount:       money.MustParse("90"),
			Participants: []string{"Alice", "Bob", "Charlie"},
		},
	}))
	require.NoError(t, err)
	_, err = env.expenses.CreateExpense(ctx, as("Bob", &api.CreateExpenseRequest{
		GroupID: group.ID,
		Title:   "Taxi",
		SplitInput: api.SplitInput{
			Method:       "equal",
			Amount:       money.MustParse("30"),
			Participants: []string{"Alice", "Charlie"},
		},
	}))
	require.NoError(t, err)

	resp, err := env.groups.GetGroupBalances(ctx, as("Charlie", &api.GetGroupBalancesRequest{GroupID: group.ID}))
	require.NoError(t, err)

	assert.Equal(t, "USD", resp.Msg.Currency)
	assert.Equal(t, calculator.StrategyGreedy, resp.Msg.Strategy)
	assert.Equal(t, map[string]string{"Alice": "45.00", "Bob": "0.00", "Charlie": "-45.00"}, nets(resp.Msg.Balances))
	require.Len(t, resp.Msg.Settlements, 1)
	assert.Equal(t, "Charlie", resp.Msg.Settlements[0].FromUserID)
	assert.Equal(t, "Alice", resp.Msg.Settlements[0].ToUserID)
	assert.Equal(t, "45.00", resp.Msg.Settlements[0].Amount.String())
	assert.Equal(t, "USD", resp.Msg.Settlements[0].Currency)

	// Balances follow member order and keep the gross pairwise ledger.
	require.Len(t, resp.Msg.Balances, 3)
	alice := resp.Msg.Balances[0]
	assert.Equal(t, "Alice", alice.ParticipantID)
	require.Len(t, alice.OwedBy, 2)
	assert.Equal(t, "Bob", alice.OwedBy[0].ParticipantID)
	assert.Equal(t, "30.00", alice.OwedBy[0].Amount.String())
	require.Len(t, alice.Owes, 1)
	assert.Equal(t, "Bob", alice.Owes[0].ParticipantID)
	assert.Equal(t, "15.00", alice.Owes[0].Amount.String())

	t.Run("pending settlements do not count", func(t *testing.T) {
		rec, err := env.settlements.RecordSettlement(ctx, as("Charlie", &api.RecordSettlementRequest{
			GroupID:    group.ID,
			FromUserID: "Charlie",
			ToUserID:   "Alice",
			Amount:     money.MustParse("45"),
		}))
		require.NoError(t, err)

		resp, err := env.groups.GetGroupBalances(ctx, as("Alice", &api.GetGroupBalancesRequest{GroupID: group.ID}))
		require.NoError(t, err)
		assert.Equal(t, "-45.00", nets(resp.Msg.Balances)["Charlie"])

		_, err = env.settlements.CompleteSettlement(ctx, as("Alice", &api.CompleteSettlementRequest{
			SettlementID: rec.Msg.Settlement.ID,
		}))
		require.NoError(t, err)

		resp, err = env.groups.GetGroupBalances(ctx, as("Alice", &api.GetGroupBalancesRequest{GroupID: group.ID}))
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"Alice": "0.00", "Bob": "0.00", "Charlie": "0.00"}, nets(resp.Msg.Balances))
		assert.Empty(t, resp.Msg.Settlements)

		// The repayment is reported on its own and never as a new expense debt.
		alice, charlie := resp.Msg.Balances[0], resp.Msg.Balances[2]
		require.Len(t, charlie.Paid, 1)
		assert.Equal(t, "Alice", charlie.Paid[0].ParticipantID)
		assert.Equal(t, "45.00", charlie.Paid[0].Amount.String())
		assert.Empty(t, charlie.Received)
		require.Len(t, alice.Received, 1)
		assert.Equal(t, "Charlie", alice.Received[0].ParticipantID)
		assert.Equal(t, "45.00", alice.Received[0].Amount.String())

		require.Len(t, charlie.Owes, 2)
		assert.Equal(t, "Alice", charlie.Owes[0].ParticipantID)
		assert.Equal(t, "30.00", charlie.Owes[0].Amount.String())
		assert.Equal(t, "Bob", charlie.Owes[1].ParticipantID)
		assert.Equal(t, "15.00", charlie.Owes[1].Amount.String())
		require.Len(t, alice.Owes, 1)
		assert.Equal(t, "Bob", alice.Owes[0].ParticipantID)
		assert.Empty(t, charlie.OwedBy)
	})

	t.Run("non-member", func(t *testing.T) {
		_, err := env.groups.GetGroupBalances(ctx, as("Mallory", &api.GetGroupBalancesRequest{GroupID: group.ID}))
		requireCode(t, err, connect.CodePermissionDenied)
	})
}

// customExpense records payer paying amount owed by the given participant/amount pairs.
func customExpense(t *testing.T, env *testEnv, groupID, payer string, pairs ...string) {
	t.Helper()
	var shares []api.CustomShare
	total := money.Zero
	for i := 0; i < len(pairs); i += 2 {
		amount := money.MustParse(pairs[i+1])
		shares = append(shares, api.CustomShare{ParticipantID: pairs[i], Amount: amount})
		total = total.Add(amount)
	}
	_, err := env.expenses.CreateExpense(context.Background(), as(payer, &api.CreateExpenseRequest{
		GroupID: groupID,
		SplitInput: api.SplitInput{
			Method:  "custom",
			Amount:  total,
			Amounts: shares,
		},
	}))
	require.NoError(t, err)
}

func TestGetGroupBalances_ExactStrategy(t *testing.T) {
	// Nets: Alice +5, Bob +6, Carol -5, Dave -4, Erin -2.
	// Greedy needs 4 transfers here; the exact strategy finds 3.
	setup := func(t *testing.T, opts ...Option) (*testEnv, *api.Group) {
		env := setupTestServer(t, opts...)
		group := createGroup(t, env, "Alice", "Bob", "Carol", "Dave", "Erin")
		customExpense(t, env, group.ID, "Alice", "Carol", "5")
		customExpense(t, env, group.ID, "Bob", "Dave", "4", "Erin", "2")
		return env, group
	}

	env, group := setup(t)
	greedy, err := env.groups.GetGroupBalances(context.Background(), as("Alice", &api.GetGroupBalancesRequest{GroupID: group.ID}))
	require.NoError(t, err)
	assert.Len(t, greedy.Msg.Settlements, 4)

	env, group = setup(t, WithOptimizer(calculator.StrategyExact, calculator.Exact{MaxParticipants: 8}))
	exact, err := env.groups.GetGroupBalances(context.Background(), as("Alice", &api.GetGroupBalancesRequest{GroupID: group.ID}))
	require.NoError(t, err)
	assert.Equal(t, calculator.StrategyExact, exact.Msg.Strategy)
	assert.Len(t, exact.Msg.Settlements, 3)

	residual := map[string]money.Money{}
	for _, b := range exact.Msg.Balances {
		residual[b.ParticipantID] = b.Net
	}
	for _, s := range exact.Msg.Settlements {
		residual[s.FromUserID] = residual[s.FromUserID].Add(s.Amount)
		residual[s.ToUserID] = residual[s.ToUserID].Sub(s.Amount)
	}
	for id, r := range residual {
		assert.True(t, r.NearZero(), "%s left with %s", id, r)
	}
}
