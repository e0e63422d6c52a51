package primitives

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomBytesLength(t *testing.T) {
	b, err := RandomBytes(32)
	require.NoError(t, err)
	assert.Len(t, b, 32)
}

func TestRandomBytesDiffer(t *testing.T) {
	a, err := RandomBytes(16)
	require.NoError(t, err)
	b, err := RandomBytes(16)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestRandomIntRange(t *testing.T) {
	for i := 0; i < 100; i++ {
		n, err := RandomInt(5, 5)
		require.NoError(t, err)
		assert.Equal(t, 5, n)
	}
	for i := 0; i < 100; i++ {
		n, err := RandomInt(1, 10)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 1)
		assert.LessOrEqual(t, n, 10)
	}
}

func TestRandomIntInvalidRange(t *testing.T) {
	_, err := RandomInt(10, 1)
	assert.Error(t, err)
}

func TestUUIDv4Unique(t *testing.T) {
	a := UUIDv4()
	b := UUIDv4()
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 36)
}

func TestChecksum8Deterministic(t *testing.T) {
	data := []byte("hello world")
	assert.Equal(t, Checksum8(data), Checksum8(data))
	assert.Len(t, Checksum8(data), 16)
}

func TestChecksum8BytesMatchesHex(t *testing.T) {
	data := []byte("fragment-data")
	assert.Equal(t, Checksum8(data), hexEncode(Checksum8Bytes(data)))
}

func TestConstantTimeEqual(t *testing.T) {
	assert.True(t, ConstantTimeEqual([]byte("abc"), []byte("abc")))
	assert.False(t, ConstantTimeEqual([]byte("abc"), []byte("abd")))
	assert.False(t, ConstantTimeEqual([]byte("abc"), []byte("ab")))
	assert.False(t, ConstantTimeEqual(nil, []byte("a")))
}

func hexEncode(b []byte) string {
	const hextable = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, v := range b {
		out[i*2] = hextable[v>>4]
		out[i*2+1] = hextable[v&0x0f]
	}
	return string(out)
}
