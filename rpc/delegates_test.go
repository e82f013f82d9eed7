package rpc

import (
	"testing"

	"forgechain/state"
	"forgechain/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedDelegates(t *testing.T) *state.Accounts {
	t.Helper()
	accounts := state.NewAccounts()

	seed := []struct {
		addr     byte
		username string
		votes    uint64
	}{
		{1, "delegate1", 2},
		{2, "delegate2", 0},
		{3, "delegate3", 0},
		{4, "delegate4", 0},
	}
	for _, s := range seed {
		var addr types.Address
		addr[len(addr)-1] = s.addr
		acct := accounts.GetOrCreate(addr)
		accounts.AttachDelegate(acct, &types.Delegate{Username: s.username, Votes: s.votes})
	}
	return accounts
}

func TestGetDelegatesSortByVotesDescTiebreaksByUsername(t *testing.T) {
	env = &Environment{Accounts: seedDelegates(t)}

	result, err := GetDelegates(nil, 3, 0, "", [][]string{{"votes", "DESC"}})
	require.NoError(t, err)
	require.True(t, result.Success)

	require.Len(t, result.Delegates, 3)
	assert.Equal(t, "delegate1", result.Delegates[0].Username)
	assert.Equal(t, "delegate2", result.Delegates[1].Username)
	assert.Equal(t, "delegate3", result.Delegates[2].Username)
	assert.Equal(t, 4, result.Count)
}

func TestGetDelegatesEmptyPageReportsFullCount(t *testing.T) {
	env = &Environment{Accounts: seedDelegates(t)}

	result, err := GetDelegates(nil, 10, 5, "", nil)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Empty(t, result.Delegates)
	assert.Equal(t, 4, result.Count)
}

func TestGetDelegatesMissingLimitFails(t *testing.T) {
	env = &Environment{Accounts: seedDelegates(t)}

	result, err := GetDelegates(nil, 0, 0, "", nil)
	require.NoError(t, err)
	assert.False(t, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "GET_DELEGATES")
}

func TestGetDelegatesDefaultSortIsPublicKeyAscending(t *testing.T) {
	accounts := state.NewAccounts()
	var a1, a2 types.Address
	a1[7], a2[7] = 9, 1
	acct1 := accounts.GetOrCreate(a1)
	accounts.AttachDelegate(acct1, &types.Delegate{Username: "zzz", PublicKey: []byte{0xff}})
	acct2 := accounts.GetOrCreate(a2)
	accounts.AttachDelegate(acct2, &types.Delegate{Username: "aaa", PublicKey: []byte{0x01}})

	env = &Environment{Accounts: accounts}

	result, err := GetDelegates(nil, 10, 0, "", nil)
	require.NoError(t, err)
	require.Len(t, result.Delegates, 2)
	assert.Equal(t, "aaa", result.Delegates[0].Username)
	assert.Equal(t, "zzz", result.Delegates[1].Username)
}
