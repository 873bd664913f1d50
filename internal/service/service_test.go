package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/api/apiconnect"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
)

// testUserHeader names the caller in tests, standing in for a bearer token.
const testUserHeader = "X-Test-User"

func testAuth() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if user := req.Header().Get(testUserHeader); user != "" {
				ctx = middleware.WithUser(ctx, user, "")
			}
			return next(ctx, req)
		}
	}
}

// as builds a request sent on behalf of user. An empty user sends no identity.
func as[T any](user string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	if user != "" {
		req.Header().Set(testUserHeader, user)
	}
	return req
}

type testEnv struct {
	store       *sqlite.SQLiteStore
	groups      apiconnect.GroupServiceClient
	expenses    apiconnect.ExpenseServiceClient
	settlements apiconnect.SettlementServiceClient
}

// setupTestServer serves the ledger services over httptest backed by a temp database.
func setupTestServer(t *testing.T, opts ...Option) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	interceptors := connect.WithInterceptors(testAuth())
	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewGroupServiceHandler(NewGroupService(store, opts...), interceptors))
	mux.Handle(apiconnect.NewExpenseServiceHandler(NewExpenseService(store, opts...), interceptors))
	mux.Handle(apiconnect.NewSettlementServiceHandler(NewSettlementService(store, opts...), interceptors))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return &testEnv{
		store:       store,
		groups:      apiconnect.NewGroupServiceClient(server.Client(), server.URL),
		expenses:    apiconnect.NewExpenseServiceClient(server.Client(), server.URL),
		settlements: apiconnect.NewSettlementServiceClient(server.Client(), server.URL),
	}
}

func requireCode(t *testing.T, err error, code connect.Code) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, connect.CodeOf(err), "error: %v", err)
}

// ctxAs is as for handlers called directly, bypassing the transport.
func ctxAs(ctx context.Context, user string) context.Context {
	return middleware.WithUser(ctx, user, "")
}

func createGroupDirect(t *testing.T, store *sqlite.SQLiteStore, owner string, members ...string) *models.Group {
	t.Helper()
	group := &models.Group{
		Name:      "Direct",
		Currency:  "USD",
		Members:   append([]string{owner}, members...),
		CreatedBy: owner,
	}
	require.NoError(t, store.CreateGroup(context.Background(), group))
	return group
}
