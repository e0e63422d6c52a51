package fragment

import (
	"testing"

	"github.com/slasshy/slasshy/internal/primitives"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomPayload(t *testing.T, n int) []byte {
	b, err := primitives.RandomBytes(n)
	require.NoError(t, err)
	return b
}

func TestSplitSmallPayloadSingleFragment(t *testing.T) {
	payload := randomPayload(t, 1024)
	frags, err := Split(payload, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, frags, 1)
	assert.Equal(t, 0, frags[0].Index)
	assert.Equal(t, 1, frags[0].Total)
}

func TestSplitReassembleRoundTrip(t *testing.T) {
	payload := randomPayload(t, 2*1024*1024) // 2 MiB
	frags, err := Split(payload, Options{MinChunk: 64 * 1024, MaxChunk: 512 * 1024})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(frags), 4)
	assert.LessOrEqual(t, len(frags), 33)

	out, err := Reassemble(frags)
	require.NoError(t, err)
	assert.Equal(t, payload, out)
}

func TestReassembleShuffledOrder(t *testing.T) {
	payload := randomPayload(t, 1*1024*1024)
	frags, err := Split(payload, DefaultOptions())
	require.NoError(t, err)

	shuffled := make([]Fragment, len(frags))
	copy(shuffled, frags)
	for i, j := 0, len(shuffled)-1; i < j; i, j = i+1, j-1 {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	out, err := Reassemble(shuffled)
	require.NoError(t, err)
	assert.Equal(t, payload, out)
}

func TestReassembleMissingFragment(t *testing.T) {
	payload := randomPayload(t, 1*1024*1024)
	frags, err := Split(payload, DefaultOptions())
	require.NoError(t, err)
	require.Greater(t, len(frags), 1)

	dropped := append([]Fragment{}, frags[1:]...)
	_, err = Reassemble(dropped)
	var missing *MissingError
	assert.ErrorAs(t, err, &missing)
}

func TestReassembleDuplicateFragment(t *testing.T) {
	payload := randomPayload(t, 1*1024*1024)
	frags, err := Split(payload, DefaultOptions())
	require.NoError(t, err)
	require.Greater(t, len(frags), 1)

	withDup := append([]Fragment{}, frags...)
	withDup = append(withDup, frags[0])
	_, err = Reassemble(withDup)
	var dup *DuplicateError
	assert.ErrorAs(t, err, &dup)
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	payload := randomPayload(t, 100)
	frags, err := Split(payload, DefaultOptions())
	require.NoError(t, err)

	buf := Serialize(frags[0])
	out, err := Deserialize(buf)
	require.NoError(t, err)
	assert.Equal(t, frags[0].Data, out.Data)
	assert.Equal(t, frags[0].Index, out.Index)
	assert.Equal(t, frags[0].Total, out.Total)
}

func TestDeserializeCorruptChecksum(t *testing.T) {
	payload := randomPayload(t, 200)
	frags, err := Split(payload, DefaultOptions())
	require.NoError(t, err)

	buf := Serialize(frags[0])
	buf[len(buf)-1] ^= 0xff // flip a data byte, checksum now mismatches

	_, err = Deserialize(buf)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestDeserializeTruncated(t *testing.T) {
	payload := randomPayload(t, 200)
	frags, err := Split(payload, DefaultOptions())
	require.NoError(t, err)

	buf := Serialize(frags[0])
	_, err = Deserialize(buf[:HeaderSize-1])
	assert.ErrorIs(t, err, ErrTruncated)
}
