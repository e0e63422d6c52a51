package keyring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveMasterDeterministic(t *testing.T) {
	salt := []byte("0123456789abcdef0123456789abcdef")
	params := DefaultKDFParams()
	k1 := DeriveMaster([]byte("correct horse battery staple"), salt, params)
	k2 := DeriveMaster([]byte("correct horse battery staple"), salt, params)
	assert.Equal(t, k1, k2)
	assert.Len(t, k1, MasterKeySize)
}

func TestDeriveMasterDiffersByPassphrase(t *testing.T) {
	salt := []byte("0123456789abcdef0123456789abcdef")
	params := DefaultKDFParams()
	k1 := DeriveMaster([]byte("correct horse battery staple"), salt, params)
	k2 := DeriveMaster([]byte("wrong horse battery staple"), salt, params)
	assert.NotEqual(t, k1, k2)
}

func TestValidateRejectsWeakerParams(t *testing.T) {
	p := DefaultKDFParams()
	p.TimeCost = 1
	assert.Error(t, p.Validate())
}

func TestDeriveSubkeyStable(t *testing.T) {
	master := []byte("0123456789abcdef0123456789abcdef")
	k1, err := DeriveSubkey(master, LabelIndexKey, 32)
	require.NoError(t, err)
	k2, err := DeriveSubkey(master, LabelIndexKey, 32)
	require.NoError(t, err)
	assert.Equal(t, k1, k2)

	k3, err := DeriveSubkey(master, LabelEntryKey, 32)
	require.NoError(t, err)
	assert.NotEqual(t, k1, k3)
}

func TestHierarchyUnlockWrongPassphrase(t *testing.T) {
	h := NewHierarchy(time.Minute)
	defer h.Close()

	salt, err := GenerateSalt()
	require.NoError(t, err)
	params := DefaultKDFParams()
	master := DeriveMaster([]byte("correct"), salt, params)
	verifier := Verifier(master)

	err = h.Unlock([]byte("wrong"), salt, verifier, params)
	assert.ErrorIs(t, err, ErrBadPassphrase)
}

func TestHierarchyUnlockThenLock(t *testing.T) {
	h := NewHierarchy(time.Minute)
	defer h.Close()

	salt, err := GenerateSalt()
	require.NoError(t, err)
	params := DefaultKDFParams()
	master := DeriveMaster([]byte("correct"), salt, params)
	verifier := Verifier(master)

	require.NoError(t, h.Unlock([]byte("correct"), salt, verifier, params))
	assert.True(t, h.IsUnlocked())

	idxKey, err := h.IndexKey()
	require.NoError(t, err)
	assert.Len(t, idxKey, MasterKeySize)

	h.Lock()
	assert.False(t, h.IsUnlocked())

	_, err = h.IndexKey()
	assert.ErrorIs(t, err, ErrLocked)
}

func TestHolderExpiry(t *testing.T) {
	h := NewHolder(30 * time.Millisecond)
	defer h.Close()
	h.Put("k", []byte("secret-key-bytes"))

	_, err := h.Get("k")
	require.NoError(t, err)

	time.Sleep(80 * time.Millisecond)
	_, err = h.Get("k")
	assert.ErrorIs(t, err, ErrLocked)
}
