package catalog

import (
	"encoding/binary"
	"errors"
)

const maskEncodedSize = 16

var errInvalidMaskLength = errors.New("invalid mask length")

// EncodeMask128 serializes a mask as 16 big-endian bytes, high word first.
// The store record codecs rely on this fixed width.
func EncodeMask128(m Mask128) []byte {
	buf := make([]byte, maskEncodedSize)
	binary.BigEndian.PutUint64(buf[:8], m.Hi)
	binary.BigEndian.PutUint64(buf[8:], m.Lo)
	return buf
}

// DecodeMask128 reverses [EncodeMask128].
func DecodeMask128(data []byte) (Mask128, error) {
	if len(data) != maskEncodedSize {
		return Mask128{}, errInvalidMaskLength
	}
	return Mask128{
		Hi: binary.BigEndian.Uint64(data[:8]),
		Lo: binary.BigEndian.Uint64(data[8:]),
	}, nil
}
