package privval

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenSaveAndLoadFilePVRoundTrips(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "delegate.json")

	original := GenFilePV(keyPath)
	original.Save()

	loaded := LoadFilePV(keyPath)

	assert.Equal(t, original.GetAddress(), loaded.GetAddress())
	assert.Equal(t, original.GetPublicKey(), loaded.GetPublicKey())
}

func TestLoadOrGenFilePVGeneratesOnFirstCall(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "delegate.json")

	first := LoadOrGenFilePV(keyPath)
	second := LoadOrGenFilePV(keyPath)

	assert.Equal(t, first.GetAddress(), second.GetAddress())
}

func TestKeyPairSignsWithDelegateKey(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "delegate.json")
	pv := GenFilePV(keyPath)

	kp := pv.KeyPair()
	require.NotNil(t, kp)

	sig := kp.Sign([]byte("block bytes"))
	assert.Len(t, sig, 64)
}
