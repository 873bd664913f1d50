package service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/splitledger/internal/api"
	"github.com/mmynk/splitledger/internal/api/apiconnect"
	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/storage/sqlite"
	"github.com/mmynk/splitledger/pkg/logging"
)

type authEnv struct {
	auth   apiconnect.AuthServiceClient
	groups apiconnect.GroupServiceClient
}

// setupAuthServer wires the real token interceptors the way the server binary does.
func setupAuthServer(t *testing.T) *authEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)

	jwtManager := auth.NewJWTManager("test-secret-key-that-is-long-enough", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost)
	logger := logging.New(io.Discard, slog.LevelDebug)

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewAuthServiceHandler(
		NewAuthService(authenticator, jwtManager, store, logger),
		connect.WithInterceptors(middleware.OptionalAuth(jwtManager)),
	))
	mux.Handle(apiconnect.NewGroupServiceHandler(
		NewGroupService(store),
		connect.WithInterceptors(middleware.RequireAuth(jwtManager)),
	))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return &authEnv{
		auth:   apiconnect.NewAuthServiceClient(server.Client(), server.URL),
		groups: apiconnect.NewGroupServiceClient(server.Client(), server.URL),
	}
}

func withToken[T any](token string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+token)
	return req
}

func TestAuthService_RegisterLoginCurrentUser(t *testing.T) {
	env := setupAuthServer(t)
	ctx := context.Background()

	reg, err := env.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email:       "Alice@Example.com",
		DisplayName: "Alice",
		Password:    "password123",
	}))
	require.NoError(t, err)
	assert.NotEmpty(t, reg.Msg.Token)
	assert.Equal(t, "alice@example.com", reg.Msg.User.Email)
	assert.Equal(t, "Alice", reg.Msg.User.DisplayName)

	login, err := env.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{
		Email:    "alice@example.com",
		Password: "password123",
	}))
	require.NoError(t, err)
	assert.Equal(t, reg.Msg.User.ID, login.Msg.User.ID)
	assert.Greater(t, login.Msg.ExpiresAt, time.Now().Unix())

	me, err := env.auth.GetCurrentUser(ctx, withToken(login.Msg.Token, &api.GetCurrentUserRequest{}))
	require.NoError(t, err)
	assert.Equal(t, reg.Msg.User.ID, me.Msg.User.ID)
	assert.Equal(t, "Alice", me.Msg.User.DisplayName)

	t.Run("token authorizes ledger calls", func(t *testing.T) {
		resp, err := env.groups.CreateGroup(ctx, withToken(login.Msg.Token, &api.CreateGroupRequest{
			Name:    "Flat",
			Members: []string{"bob"},
		}))
		require.NoError(t, err)
		assert.Equal(t, reg.Msg.User.ID, resp.Msg.Group.CreatedBy)
		assert.Equal(t, []string{reg.Msg.User.ID, "bob"}, resp.Msg.Group.Members)
	})

	t.Run("ledger calls need a token", func(t *testing.T) {
		_, err := env.groups.ListGroups(ctx, connect.NewRequest(&api.ListGroupsRequest{}))
		requireCode(t, err, connect.CodeUnauthenticated)

		_, err = env.groups.ListGroups(ctx, withToken("garbage", &api.ListGroupsRequest{}))
		requireCode(t, err, connect.CodeUnauthenticated)
	})
}

func TestAuthService_Errors(t *testing.T) {
	env := setupAuthServer(t)
	ctx := context.Background()

	_, err := env.auth.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email:       "bob@example.com",
		DisplayName: "Bob",
		Password:    "password123",
	}))
	require.NoError(t, err)

	tests := []struct {
		name string
		req  *api.RegisterRequest
		code connect.Code
	}{
		{
			name: "duplicate email",
			req:  &api.RegisterRequest{Email: "BOB@example.com", DisplayName: "Bob 2", Password: "password123"},
			code: connect.CodeAlreadyExists,
		},
		{
			name: "short password",
			req:  &api.RegisterRequest{Email: "carol@example.com", DisplayName: "Carol", Password: "short"},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "bad email",
			req:  &api.RegisterRequest{Email: "not-an-email", DisplayName: "Carol", Password: "password123"},
			code: connect.CodeInvalidArgument,
		},
		{
			name: "missing display name",
			req:  &api.RegisterRequest{Email: "carol@example.com", Password: "password123"},
			code: connect.CodeInvalidArgument,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.auth.Register(ctx, connect.NewRequest(tt.req))
			requireCode(t, err, tt.code)
		})
	}

	t.Run("wrong password", func(t *testing.T) {
		_, err := env.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{Email: "bob@example.com", Password: "wrong-password"}))
		requireCode(t, err, connect.CodeUnauthenticated)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := env.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{Email: "nobody@example.com", Password: "password123"}))
		requireCode(t, err, connect.CodeUnauthenticated)
	})

	t.Run("empty credentials", func(t *testing.T) {
		_, err := env.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{}))
		requireCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("current user without token", func(t *testing.T) {
		_, err := env.auth.GetCurrentUser(ctx, connect.NewRequest(&api.GetCurrentUserRequest{}))
		requireCode(t, err, connect.CodeUnauthenticated)

		_, err = env.auth.GetCurrentUser(ctx, withToken("garbage", &api.GetCurrentUserRequest{}))
		requireCode(t, err, connect.CodeUnauthenticated)
	})
}
