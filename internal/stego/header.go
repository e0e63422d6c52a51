package stego

import (
	"encoding/binary"

	"github.com/slasshy/slasshy/internal/primitives"
)

// HeaderSize is the size in bytes of the stego header: 4-byte magic,
// 4-byte big-endian length, 8-byte truncated SHA-256 checksum (§3, §6).
const HeaderSize = 4 + 4 + 8

// Magic is the 4-byte marker that opens every embedded payload.
var Magic = [4]byte{0x53, 0x4C, 0x53, 0x48} // "SLSH"

func buildHeader(data []byte) []byte {
	h := make([]byte, HeaderSize)
	copy(h[0:4], Magic[:])
	binary.BigEndian.PutUint32(h[4:8], uint32(len(data)))
	copy(h[8:16], primitives.Checksum8Bytes(data))
	return h
}

type parsedHeader struct {
	length   uint32
	checksum []byte
}

func parseHeader(h []byte) (parsedHeader, bool) {
	if len(h) < HeaderSize {
		return parsedHeader{}, false
	}
	if h[0] != Magic[0] || h[1] != Magic[1] || h[2] != Magic[2] || h[3] != Magic[3] {
		return parsedHeader{}, false
	}
	return parsedHeader{
		length:   binary.BigEndian.Uint32(h[4:8]),
		checksum: append([]byte{}, h[8:16]...),
	}, true
}
