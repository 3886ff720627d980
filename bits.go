package apngdec

// The bit reader is stateless: the caller owns the bit cursor bp, where
// bp>>3 is the byte and bp&7 the bit within it, least significant first.
// Callers bounds-check bp against the input before reading.

func readBit(bp *uint, in []byte) uint32 {
	bit := uint32(in[*bp>>3]>>(*bp&7)) & 1
	*bp++
	return bit
}

func readBits(bp *uint, in []byte, n uint) uint32 {
	var v uint32
	for i := uint(0); i < n; i++ {
		v |= readBit(bp, in) << i
	}
	return v
}

// bitsAvailable reports whether n more bits can be read at bp.
func bitsAvailable(bp uint, in []byte, n uint) bool {
	return bp+n <= uint(len(in))*8
}
