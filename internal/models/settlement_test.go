package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettlementTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    SettlementStatus
		to      SettlementStatus
		wantErr bool
	}{
		{"pending to completed", SettlementPending, SettlementCompleted, false},
		{"pending to cancelled", SettlementPending, SettlementCancelled, false},
		{"pending to pending", SettlementPending, SettlementPending, true},
		{"completed to cancelled", SettlementCompleted, SettlementCancelled, true},
		{"cancelled to completed", SettlementCancelled, SettlementCompleted, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Settlement{ID: "s1", Status: tt.from}
			err := s.Transition(tt.to, 1700000000)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTransition)
				assert.Equal(t, tt.from, s.Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, s.Status)
			if tt.to == SettlementCompleted {
				assert.Equal(t, int64(1700000000), s.CompletedAt)
			} else {
				assert.Zero(t, s.CompletedAt)
			}
		})
	}
}

func TestNormalizeCategory(t *testing.T) {
	assert.Equal(t, "1", NormalizeCategory("1"))
	assert.Equal(t, CategoryOther, NormalizeCategory(""))
	assert.Equal(t, CategoryOther, NormalizeCategory("groceries"))
}

func TestGroupHasMember(t *testing.T) {
	g := &Group{Members: []string{"Alice", "Bob"}}
	assert.True(t, g.HasMember("Bob"))
	assert.False(t, g.HasMember("Mallory"))
}
