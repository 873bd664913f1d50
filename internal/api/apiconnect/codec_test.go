package apiconnect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/api"
	"github.com/mmynk/splitledger/internal/money"
)

func TestCodec(t *testing.T) {
	codec := Codec{}
	assert.Equal(t, "json", codec.Name())

	t.Run("money travels as a string", func(t *testing.T) {
		data, err := codec.Marshal(&api.CustomShare{ParticipantID: "alice", Amount: money.MustParse("12.5")})
		require.NoError(t, err)
		assert.JSONEq(t, `{"participantId":"alice","amount":"12.50"}`, string(data))
	})

	t.Run("empty body leaves the message zero", func(t *testing.T) {
		var req api.ListGroupsRequest
		require.NoError(t, codec.Unmarshal(nil, &req))
		require.NoError(t, codec.Unmarshal([]byte("  \n"), &req))
	})

	t.Run("embedded split input", func(t *testing.T) {
		var req api.CreateExpenseRequest
		err := codec.Unmarshal([]byte(`{"groupId":"g1","method":"equal","amount":"30","participants":["a","b"]}`), &req)
		require.NoError(t, err)
		assert.Equal(t, "g1", req.GroupID)
		assert.Equal(t, "equal", req.Method)
		assert.Equal(t, "30.00", req.Amount.String())
		assert.Equal(t, []string{"a", "b"}, req.Participants)
	})

	t.Run("unknown fields are rejected", func(t *testing.T) {
		var req api.GetGroupRequest
		err := codec.Unmarshal([]byte(`{"groupId":"g1","bogus":true}`), &req)
		assert.Error(t, err)
	})
}
