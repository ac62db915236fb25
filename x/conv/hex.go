// Package conv has allocation-light formatting helpers usable without fmt.
package conv

const hexd = "0123456789ABCDEF"

// AppendHex8 appends v as two uppercase hex digits.
func AppendHex8(dst []byte, v uint8) []byte {
	return append(dst, hexd[v>>4], hexd[v&0xF])
}

// HexRGB returns "#RRGGBB".
func HexRGB(r, g, b uint8) string {
	buf := make([]byte, 0, 7)
	buf = append(buf, '#')
	buf = AppendHex8(buf, r)
	buf = AppendHex8(buf, g)
	buf = AppendHex8(buf, b)
	return string(buf)
}
