// Package stego implements LSB steganography over the RGB channels of a
// PNG carrier (§4.5): a magic-framed header, bounded capacity, and
// bit-exact round-trip. The alpha channel is never touched.
package stego

import (
	"bytes"
	"image"
	"image/draw"
	"image/png"
	"io"
	"os"

	"github.com/slasshy/slasshy/internal/primitives"
)

// Result describes a completed Embed call.
type Result struct {
	BytesEmbedded int
	Checksum      string
	Capacity      int
}

// Capacity returns the number of payload bytes img can carry, after
// reserving HeaderSize for the framing header. Alpha is never touched, so
// only the three R/G/B channels of each pixel count toward capacity.
func Capacity(img image.Image) int {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	bits := w * h * 3
	capacity := bits/8 - HeaderSize
	if capacity < 0 {
		return 0
	}
	return capacity
}

// toRGBA copies img into a fresh *image.RGBA so bit manipulation can
// address Pix directly. If img is already *image.RGBA, it is used as-is
// (no conversion, no loss).
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(b)
	draw.Draw(out, b, img, b.Min, draw.Src)
	return out
}

// Decode reads a PNG carrier from r.
func Decode(r io.Reader) (image.Image, error) {
	img, err := png.Decode(r)
	if err != nil {
		return nil, ErrInvalidImage
	}
	return img, nil
}

// DecodeFile reads a PNG carrier from path.
func DecodeFile(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ErrInvalidImage
	}
	defer f.Close()
	return Decode(f)
}

// Encode writes an RGBA carrier as a lossless PNG to w.
func Encode(w io.Writer, img *image.RGBA) error {
	return png.Encode(w, img)
}

// EncodeFile writes an RGBA carrier as a lossless PNG to path.
func EncodeFile(path string, img *image.RGBA) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return Encode(f, img)
}

// Embed writes header||data into the least-significant bits of carrier's
// R/G/B channels, row-major, and returns a new RGBA carrier plus the
// result metadata. It fails with ErrCarrierTooSmall if data exceeds
// Capacity(carrier).
func Embed(carrier image.Image, data []byte) (*image.RGBA, Result, error) {
	capacity := Capacity(carrier)
	if len(data) > capacity {
		return nil, Result{}, ErrCarrierTooSmall
	}

	rgba := cloneRGBA(toRGBA(carrier))
	payload := append(buildHeader(data), data...)
	writeBits(rgba, payload)

	return rgba, Result{
		BytesEmbedded: len(data),
		Checksum:      primitives.Checksum8(data),
		Capacity:      capacity,
	}, nil
}

// EmbedFile loads srcPath, embeds data, and saves the result to dstPath.
func EmbedFile(srcPath, dstPath string, data []byte) (Result, error) {
	img, err := DecodeFile(srcPath)
	if err != nil {
		return Result{}, err
	}
	out, res, err := Embed(img, data)
	if err != nil {
		return Result{}, err
	}
	if err := EncodeFile(dstPath, out); err != nil {
		return Result{}, err
	}
	return res, nil
}

// Extract reverses Embed: it reads the header, validates the magic,
// reads exactly header.length bytes, and verifies the checksum.
func Extract(carrier image.Image) ([]byte, error) {
	rgba := toRGBA(carrier)
	capacity := Capacity(rgba)

	headerBits := readBits(rgba, 0, HeaderSize*8)
	if len(headerBits) < HeaderSize {
		return nil, ErrNoPayload
	}
	header, ok := parseHeader(headerBits)
	if !ok {
		return nil, ErrNoPayload
	}

	length := int(header.length)
	if length > capacity {
		// bounded by capacity: never allocate more than the carrier can
		// actually hold, even if a corrupted/malicious header claims more.
		length = capacity
	}
	if length < 0 {
		length = 0
	}

	totalAvailableBits := availableBits(rgba)
	if HeaderSize*8+length*8 > totalAvailableBits {
		return nil, ErrTruncated
	}

	data := readBits(rgba, HeaderSize*8, length*8)
	if len(data) < length {
		return nil, ErrTruncated
	}

	if !primitives.ConstantTimeEqual(primitives.Checksum8Bytes(data), header.checksum) {
		return nil, ErrCorrupt
	}
	return data, nil
}

// ExtractFile loads path and extracts its embedded payload.
func ExtractFile(path string) ([]byte, error) {
	img, err := DecodeFile(path)
	if err != nil {
		return nil, err
	}
	return Extract(img)
}

// HasEmbeddedData probes the first 32 payload bits against the magic.
// Any load error is reported as false, never propagated.
func HasEmbeddedData(img image.Image) bool {
	rgba := toRGBA(img)
	if availableBits(rgba) < 32 {
		return false
	}
	magicBits := readBits(rgba, 0, 32)
	if len(magicBits) < 4 {
		return false
	}
	return magicBits[0] == Magic[0] && magicBits[1] == Magic[1] && magicBits[2] == Magic[2] && magicBits[3] == Magic[3]
}

// HasEmbeddedDataFile is the file-based form of HasEmbeddedData.
func HasEmbeddedDataFile(path string) bool {
	img, err := DecodeFile(path)
	if err != nil {
		return false
	}
	return HasEmbeddedData(img)
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	out := image.NewRGBA(src.Bounds())
	copy(out.Pix, src.Pix)
	out.Stride = src.Stride
	return out
}

// availableBits is the number of R/G/B LSBs the carrier offers in total,
// i.e. 3 bits per pixel.
func availableBits(rgba *image.RGBA) int {
	b := rgba.Bounds()
	return b.Dx() * b.Dy() * 3
}

// writeBits streams payload bits MSB-first through R, G, B of each pixel,
// row-major (y outer, x inner), skipping alpha, stopping once every
// payload bit has been written.
func writeBits(rgba *image.RGBA, payload []byte) {
	b := rgba.Bounds()
	w := b.Dx()
	totalBits := len(payload) * 8

	for bitIdx := 0; bitIdx < totalBits; bitIdx++ {
		byteIdx := bitIdx / 8
		bitInByte := 7 - (bitIdx % 8)
		bit := (payload[byteIdx] >> bitInByte) & 1

		pixelNumber := bitIdx / 3
		channel := bitIdx % 3
		x := b.Min.X + pixelNumber%w
		y := b.Min.Y + pixelNumber/w

		off := rgba.PixOffset(x, y)
		rgba.Pix[off+channel] = (rgba.Pix[off+channel] &^ 1) | bit
	}
}

// readBits reads nBits starting at bit offset start, in the same channel
// order as writeBits, and packs them MSB-first into bytes.
func readBits(rgba *image.RGBA, start, nBits int) []byte {
	b := rgba.Bounds()
	w := b.Dx()
	total := availableBits(rgba)
	if start+nBits > total {
		nBits = total - start
	}
	if nBits <= 0 {
		return nil
	}

	out := make([]byte, (nBits+7)/8)
	for i := 0; i < nBits; i++ {
		bitIdx := start + i
		pixelNumber := bitIdx / 3
		channel := bitIdx % 3
		x := b.Min.X + pixelNumber%w
		y := b.Min.Y + pixelNumber/w

		off := rgba.PixOffset(x, y)
		bit := rgba.Pix[off+channel] & 1

		out[i/8] |= bit << (7 - uint(i%8))
	}
	return out
}

// EncodeBuffer is a convenience for tests: re-encode an RGBA carrier into
// an in-memory PNG and decode it back, exercising the same lossless
// round-trip Embed/Extract rely on.
func EncodeBuffer(img *image.RGBA) (image.Image, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img); err != nil {
		return nil, err
	}
	return Decode(&buf)
}
