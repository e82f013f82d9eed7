package state

import (
	"testing"

	"forgechain/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAddr(b byte) types.Address {
	var a types.Address
	a[len(a)-1] = b
	return a
}

func TestAddIsIdempotentAndMergesPublicKey(t *testing.T) {
	accts := NewAccounts()
	addr := testAddr(1)

	a1 := accts.Add(addr, nil)
	assert.False(t, a1.HasPublicKey())

	pub := make([]byte, 32)
	pub[0] = 0xAB
	a2 := accts.Add(addr, pub)
	assert.Same(t, a1, a2)
	assert.True(t, a2.HasPublicKey())

	found, ok := accts.GetByPublicKey(pub)
	require.True(t, ok)
	assert.Same(t, a1, found)
}

func TestAddDoesNotOverwriteLearnedPublicKey(t *testing.T) {
	accts := NewAccounts()
	addr := testAddr(2)

	first := make([]byte, 32)
	first[0] = 1
	second := make([]byte, 32)
	second[0] = 2

	accts.Add(addr, first)
	acct := accts.Add(addr, second)
	assert.Equal(t, first, acct.PublicKey)
}

func TestGetOrCreateCreatesStub(t *testing.T) {
	accts := NewAccounts()
	addr := testAddr(3)

	_, ok := accts.GetByAddress(addr)
	assert.False(t, ok)

	acct := accts.GetOrCreate(addr)
	assert.NotNil(t, acct)
	found, ok := accts.GetByAddress(addr)
	require.True(t, ok)
	assert.Same(t, acct, found)
}

func TestAttachDelegateTracksUsernameUniqueness(t *testing.T) {
	accts := NewAccounts()
	acct := accts.GetOrCreate(testAddr(4))

	assert.False(t, accts.UsernameTaken("alice"))
	accts.AttachDelegate(acct, &types.Delegate{Username: "alice"})
	assert.True(t, accts.UsernameTaken("alice"))

	accts.AttachDelegate(acct, nil)
	assert.False(t, accts.UsernameTaken("alice"))
}

func TestDelegatesListsOnlyDelegateAccounts(t *testing.T) {
	accts := NewAccounts()
	plain := accts.GetOrCreate(testAddr(5))
	_ = plain
	delegateAcct := accts.GetOrCreate(testAddr(6))
	accts.AttachDelegate(delegateAcct, &types.Delegate{Username: "bob"})

	delegates := accts.Delegates()
	require.Len(t, delegates, 1)
	assert.Equal(t, "bob", delegates[0].Delegate.Username)
}
