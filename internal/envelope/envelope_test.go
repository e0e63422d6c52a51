package envelope

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey() []byte {
	return []byte("01234567890123456789012345678901")[:32]
}

func TestRoundTrip(t *testing.T) {
	key := testKey()
	aad := []byte("entry-id-123")
	plaintext := []byte("zero-knowledge personal vault")

	payload, err := Encrypt(plaintext, key, aad)
	require.NoError(t, err)

	out, err := Decrypt(payload, key, aad)
	require.NoError(t, err)
	assert.Equal(t, plaintext, out)
}

func TestTamperedCiphertextFails(t *testing.T) {
	key := testKey()
	aad := []byte("aad")
	payload, err := Encrypt([]byte("hello"), key, aad)
	require.NoError(t, err)

	raw := []byte(payload)
	// flip a bit deep in the base64 body (not the first char, to dodge
	// padding edge cases) to simulate ciphertext tampering.
	idx := len(raw) - 4
	if raw[idx] == 'A' {
		raw[idx] = 'B'
	} else {
		raw[idx] = 'A'
	}

	_, err = Decrypt(string(raw), key, aad)
	assert.ErrorIs(t, err, ErrTampered)
}

func TestTamperedAADFails(t *testing.T) {
	key := testKey()
	payload, err := Encrypt([]byte("hello"), key, []byte("aad-1"))
	require.NoError(t, err)

	_, err = Decrypt(payload, key, []byte("aad-2"))
	assert.ErrorIs(t, err, ErrTampered)
}

func TestWrongKeyFails(t *testing.T) {
	key := testKey()
	wrongKey := append([]byte{}, key...)
	wrongKey[0] ^= 0xff

	payload, err := Encrypt([]byte("hello"), key, nil)
	require.NoError(t, err)

	_, err = Decrypt(payload, wrongKey, nil)
	assert.ErrorIs(t, err, ErrTampered)
}

func TestObjectRoundTrip(t *testing.T) {
	type entry struct {
		Name string `json:"name"`
		N    int    `json:"n"`
	}
	key := testKey()
	in := entry{Name: "GitHub", N: 42}

	payload, err := EncryptObject(in, key, []byte("aad"))
	require.NoError(t, err)

	var out entry
	require.NoError(t, DecryptObject(payload, key, []byte("aad"), &out))
	assert.Equal(t, in, out)
}

func TestFreshIVPerEncrypt(t *testing.T) {
	key := testKey()
	a, err := Encrypt([]byte("same plaintext"), key, nil)
	require.NoError(t, err)
	b, err := Encrypt([]byte("same plaintext"), key, nil)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
