package stego

import (
	"image"
	"image/color"
	"testing"

	"github.com/slasshy/slasshy/internal/primitives"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blankCarrier(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 10, G: 20, B: 30, A: 255})
		}
	}
	return img
}

func TestCapacityMatchesFormula(t *testing.T) {
	carrier := blankCarrier(100, 100)
	// floor(100*100*3/8) - 16 == 3734
	assert.Equal(t, 3734, Capacity(carrier))
}

func TestEmbedExtractRoundTrip(t *testing.T) {
	carrier := blankCarrier(200, 200)
	payload, err := primitives.RandomBytes(500)
	require.NoError(t, err)

	out, res, err := Embed(carrier, payload)
	require.NoError(t, err)
	assert.Equal(t, 500, res.BytesEmbedded)

	// Re-encode/decode to prove bit-exactness survives a real PNG round-trip.
	reloaded, err := EncodeBuffer(out)
	require.NoError(t, err)

	extracted, err := Extract(reloaded)
	require.NoError(t, err)
	assert.Equal(t, payload, extracted)
}

func TestEmbedRejectsOversizedPayload(t *testing.T) {
	carrier := blankCarrier(10, 10)
	payload, err := primitives.RandomBytes(Capacity(carrier) + 1)
	require.NoError(t, err)

	_, _, err = Embed(carrier, payload)
	assert.ErrorIs(t, err, ErrCarrierTooSmall)
}

func TestExtractNoPayloadOnFreshCarrier(t *testing.T) {
	carrier := blankCarrier(50, 50)
	_, err := Extract(carrier)
	assert.ErrorIs(t, err, ErrNoPayload)
}

func TestHasEmbeddedDataDetectsMagic(t *testing.T) {
	carrier := blankCarrier(50, 50)
	assert.False(t, HasEmbeddedData(carrier))

	out, _, err := Embed(carrier, []byte("hello vault"))
	require.NoError(t, err)
	assert.True(t, HasEmbeddedData(out))
}

func TestExtractRejectsFlippedHeaderByte(t *testing.T) {
	carrier := blankCarrier(100, 100)
	out, _, err := Embed(carrier, []byte("the quick brown fox"))
	require.NoError(t, err)

	// Flip a bit inside the length field (byte offset 5 of the header:
	// stream bit 42, the R channel of pixel 14).
	off := out.PixOffset(out.Bounds().Min.X+14, out.Bounds().Min.Y)
	out.Pix[off] ^= 1

	_, err = Extract(out)
	assert.Error(t, err)
}

func TestExtractRejectsTamperedPayload(t *testing.T) {
	carrier := blankCarrier(100, 100)
	payload := []byte("the quick brown fox jumps over the lazy dog")
	out, _, err := Embed(carrier, payload)
	require.NoError(t, err)

	// Flip a bit well past the header, inside the payload region
	// (stream bit 180, the R channel of pixel 60: payload byte 6).
	x := out.Bounds().Min.X + 60
	y := out.Bounds().Min.Y
	off := out.PixOffset(x, y)
	out.Pix[off] ^= 1

	_, err = Extract(out)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestDecoyCarrierCanCarryPayload(t *testing.T) {
	payload := []byte("decoy contents look innocuous")
	out, res, err := EmbedDecoy(64, 64, payload)
	require.NoError(t, err)
	assert.Equal(t, len(payload), res.BytesEmbedded)

	extracted, err := Extract(out)
	require.NoError(t, err)
	assert.Equal(t, payload, extracted)
}

func TestEmbedFileExtractFileRoundTrip(t *testing.T) {
	srcDir := t.TempDir()
	srcPath := srcDir + "/carrier.png"
	dstPath := srcDir + "/out.png"

	carrier := blankCarrier(80, 80)
	require.NoError(t, EncodeFile(srcPath, carrier))

	payload := []byte("file-based round trip")
	_, err := EmbedFile(srcPath, dstPath, payload)
	require.NoError(t, err)

	extracted, err := ExtractFile(dstPath)
	require.NoError(t, err)
	assert.Equal(t, payload, extracted)
	assert.True(t, HasEmbeddedDataFile(dstPath))
}
