package proto

// Reply writers (device side) and readers (host side). Offsets are fixed by
// the wire format and must not move.

// PutVersion writes the version reply into b.
func PutVersion(b *Buffer, major, minor byte) {
	b[1], b[2] = major, minor
}

// VersionReply reads the version reply.
func VersionReply(b *Buffer) (major, minor byte) { return b[1], b[2] }

// PutReadEE writes the EEPROM read reply into b.
func PutReadEE(b *Buffer, v byte) { b[2] = v }

// ReadEEReply reads the EEPROM read reply.
func ReadEEReply(b *Buffer) byte { return b[2] }

// PutSelfTest writes the self-test reply into b.
func PutSelfTest(b *Buffer, session bool) {
	b[0], b[1], b[2] = SelfTestMagic0, SelfTestMagic1, boolByte(session)
}

// SelfTestReply validates a self-test reply and reports the session flag.
func SelfTestReply(b *Buffer) (session bool, ok bool) {
	if b[0] != SelfTestMagic0 || b[1] != SelfTestMagic1 {
		return false, false
	}
	return b[2] != 0, true
}

// Report prefixes b with the report id for the host HID layer.
func Report(b *Buffer) [Size + 1]byte {
	var r [Size + 1]byte
	r[0] = ReportID
	copy(r[1:], b[:])
	return r
}

// FromReport strips the report id. Short reports are zero padded.
func FromReport(r []byte) Buffer {
	var b Buffer
	if len(r) > 1 {
		copy(b[:], r[1:])
	}
	return b
}
