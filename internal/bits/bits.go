// Package bits provides fixed-width big-endian integer access to byte
// buffers, as used by the 64-bit aligned QOA container.
package bits

import "encoding/binary"

// ReadUint64 reads the big-endian 64-bit value stored at data[*pos] and
// advances *pos by 8 bytes. Bounds checking is the responsibility of the
// caller, given the size validations performed by the frame parser.
func ReadUint64(data []byte, pos *int) uint64 {
	v := binary.BigEndian.Uint64(data[*pos:])
	*pos += 8
	return v
}

// WriteUint64 stores v in big-endian byte order at data[*pos] and advances
// *pos by 8 bytes.
func WriteUint64(v uint64, data []byte, pos *int) {
	binary.BigEndian.PutUint64(data[*pos:], v)
	*pos += 8
}

// IntN returns the signed two's complement of x with the specified integer
// bit width.
//
// Examples of unsigned (n-bit width) x values on the left and decoded
// values on the right:
//
//	0b011 -> 3
//	0b010 -> 2
//	0b001 -> 1
//	0b000 -> 0
//	0b111 -> -1
//	0b110 -> -2
//	0b101 -> -3
//	0b100 -> -4
func IntN(x uint64, n uint) int64 {
	signBitMask := uint64(1 << (n - 1))
	if x&signBitMask == 0 {
		// positive.
		return int64(x)
	}
	// negative.
	v := int64(x ^ signBitMask) // clear sign bit.
	v -= int64(signBitMask)
	return v
}
