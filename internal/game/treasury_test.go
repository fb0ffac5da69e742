package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryTreasuryDepositAndBalance(t *testing.T) {
	t.Parallel()

	tr := NewMemoryTreasury()
	require.NoError(t, tr.Deposit("alice", 20))
	require.NoError(t, tr.Deposit("bob", 20))
	assert.Equal(t, int64(40), tr.Balance())

	require.Error(t, tr.Deposit("mallory", -1))
	assert.Equal(t, int64(40), tr.Balance())
}

func TestMemoryTreasuryPayoutAllOrNothing(t *testing.T) {
	t.Parallel()

	tr := NewMemoryTreasury()
	require.NoError(t, tr.Deposit("alice", 30))

	// Batch exceeding the balance moves nothing
	err := tr.Payout([]Payment{{To: "alice", Amount: 20}, {To: "bob", Amount: 20}})
	require.Error(t, err)
	assert.Equal(t, int64(30), tr.Balance())
	assert.Equal(t, int64(0), tr.Credits("alice"))

	require.NoError(t, tr.Payout([]Payment{{To: "alice", Amount: 10}, {To: "bob", Amount: 10}}))
	assert.Equal(t, int64(10), tr.Balance())
	assert.Equal(t, int64(10), tr.Credits("alice"))
	assert.Equal(t, int64(10), tr.Credits("bob"))
}

func TestMemoryTreasuryRejectsNegativePayout(t *testing.T) {
	t.Parallel()

	tr := NewMemoryTreasury()
	require.NoError(t, tr.Deposit("alice", 30))

	err := tr.Payout([]Payment{{To: "bob", Amount: -5}})
	require.Error(t, err)
	assert.Equal(t, int64(30), tr.Balance())
}
