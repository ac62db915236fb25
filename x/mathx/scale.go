package mathx

// ScaleU8 maps an 8-bit level in [0..255] onto [0..top] with 32-bit
// intermediates. 0 maps to 0 and 255 maps to top exactly.
func ScaleU8(v uint8, top uint16) uint16 {
	return uint16(uint32(v) * uint32(top) / 255)
}

// StepToward returns the next value of a linear walk from cur to dst that has
// n steps left, using truncating division. With n == 1 (or 0) it returns dst,
// so a walk always lands exactly on its destination.
func StepToward(cur, dst uint8, n uint16) uint8 {
	if n <= 1 {
		return dst
	}
	d := int32(dst) - int32(cur)
	return uint8(int32(cur) + d/int32(n))
}
