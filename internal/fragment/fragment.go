// Package fragment splits an encrypted payload into length-randomized,
// checksummed, individually decodable fragments (§4.4), and reassembles
// them back into the original payload.
package fragment

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/slasshy/slasshy/internal/primitives"
)

const (
	// DefaultMinChunk is the minimum fragment payload size in bytes.
	DefaultMinChunk = 64 * 1024
	// DefaultMaxChunk is the maximum fragment payload size in bytes.
	DefaultMaxChunk = 512 * 1024
	// MaxFragments is the hard ceiling on fragment count.
	MaxFragments = 100
	// HeaderSize is the length of the serialized fragment header.
	HeaderSize = 2 + 2 + 8 + 4
)

// Fragment is one independently-decodable slice of an encrypted payload.
type Fragment struct {
	Index      int
	Total      int
	Checksum8  []byte // 8 raw bytes, truncated SHA-256 of Data
	Data       []byte
	DataLength int
}

// Options controls the chunk-size bounds used by Split.
type Options struct {
	MinChunk int
	MaxChunk int
}

// DefaultOptions returns the spec-mandated default chunk bounds.
func DefaultOptions() Options {
	return Options{MinChunk: DefaultMinChunk, MaxChunk: DefaultMaxChunk}
}

// Split divides payload into fragments meeting the §3/§4.4 constraints.
func Split(payload []byte, opts Options) ([]Fragment, error) {
	if opts.MinChunk <= 0 || opts.MaxChunk < opts.MinChunk {
		return nil, fmt.Errorf("fragment: invalid chunk bounds [%d, %d]", opts.MinChunk, opts.MaxChunk)
	}

	if len(payload) <= opts.MinChunk {
		return []Fragment{newFragment(0, 1, payload)}, nil
	}

	avgChunk := (opts.MinChunk + opts.MaxChunk) / 2
	count := ceilDiv(len(payload), avgChunk)
	count = clamp(count, 2, MaxFragments)

	fragments := make([]Fragment, 0, count)
	remaining := payload
	remainingFragments := count
	variance := (opts.MaxChunk - opts.MinChunk) / 4

	for i := 0; i < count-1; i++ {
		avgRemaining := len(remaining) / remainingFragments

		delta := 0
		if variance > 0 {
			d, err := primitives.RandomInt(-variance, variance)
			if err != nil {
				return nil, fmt.Errorf("fragment: drawing chunk jitter: %w", err)
			}
			delta = d
		}
		size := avgRemaining + delta

		// (i) stay within [min, max].
		size = clamp(size, opts.MinChunk, opts.MaxChunk)
		// (ii) the remainder must still be able to allocate at least
		// minChunk per remaining fragment (including the final one).
		maxAllowed := len(remaining) - opts.MinChunk*(remainingFragments-1)
		if size > maxAllowed {
			size = maxAllowed
		}
		if size < opts.MinChunk {
			size = opts.MinChunk
		}
		if size > len(remaining) {
			size = len(remaining)
		}

		fragments = append(fragments, newFragment(i, count, remaining[:size]))
		remaining = remaining[size:]
		remainingFragments--
	}
	// last fragment takes whatever is left, regardless of chunk bounds.
	fragments = append(fragments, newFragment(count-1, count, remaining))

	return fragments, nil
}

func newFragment(index, total int, data []byte) Fragment {
	buf := make([]byte, len(data))
	copy(buf, data)
	return Fragment{
		Index:      index,
		Total:      total,
		Checksum8:  primitives.Checksum8Bytes(buf),
		Data:       buf,
		DataLength: len(buf),
	}
}

// Serialize encodes a fragment as:
// uint16_be(index) || uint16_be(total) || 8-byte checksum || uint32_be(dataLength) || data
func Serialize(f Fragment) []byte {
	out := make([]byte, HeaderSize+len(f.Data))
	binary.BigEndian.PutUint16(out[0:2], uint16(f.Index))
	binary.BigEndian.PutUint16(out[2:4], uint16(f.Total))
	copy(out[4:12], f.Checksum8)
	binary.BigEndian.PutUint32(out[12:16], uint32(f.DataLength))
	copy(out[16:], f.Data)
	return out
}

// Deserialize decodes a fragment produced by Serialize, verifying its
// checksum.
func Deserialize(buf []byte) (Fragment, error) {
	if len(buf) < HeaderSize {
		return Fragment{}, ErrTruncated
	}
	index := int(binary.BigEndian.Uint16(buf[0:2]))
	total := int(binary.BigEndian.Uint16(buf[2:4]))
	checksum := append([]byte{}, buf[4:12]...)
	dataLength := int(binary.BigEndian.Uint32(buf[12:16]))

	if len(buf) < HeaderSize+dataLength {
		return Fragment{}, ErrTruncated
	}
	data := append([]byte{}, buf[HeaderSize:HeaderSize+dataLength]...)

	if !bytesEqual(primitives.Checksum8Bytes(data), checksum) {
		return Fragment{}, ErrCorrupt
	}

	return Fragment{
		Index:      index,
		Total:      total,
		Checksum8:  checksum,
		Data:       data,
		DataLength: dataLength,
	}, nil
}

// Reassemble requires all Total fragments, verifies indices 0..Total-1
// occur exactly once, and concatenates them in order.
func Reassemble(fragments []Fragment) ([]byte, error) {
	if len(fragments) == 0 {
		return nil, &MissingError{Index: 0}
	}
	total := fragments[0].Total
	if total > MaxFragments {
		return nil, ErrTooMany
	}

	seen := make(map[int]Fragment, total)
	for _, f := range fragments {
		if f.Total != total {
			return nil, fmt.Errorf("fragment: inconsistent total (%d vs %d)", f.Total, total)
		}
		if _, dup := seen[f.Index]; dup {
			return nil, &DuplicateError{Index: f.Index}
		}
		seen[f.Index] = f
	}
	for i := 0; i < total; i++ {
		if _, ok := seen[i]; !ok {
			return nil, &MissingError{Index: i}
		}
	}

	ordered := make([]Fragment, total)
	for i := 0; i < total; i++ {
		ordered[i] = seen[i]
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })

	size := 0
	for _, f := range ordered {
		size += len(f.Data)
	}
	out := make([]byte, 0, size)
	for _, f := range ordered {
		out = append(out, f.Data...)
	}
	return out, nil
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return a
	}
	return (a + b - 1) / b
}

func clamp(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
