package proto

// Persistent byte addresses reachable with 'e' and 'E'.
const (
	EEAddrCalibration = 0
	EEAddrBootMode    = 1
	EEAddrPattern     = 2 // pattern lines, 5 bytes each
)

// Values of the boot-mode byte.
const (
	BootNormal     byte = 0
	BootNightlight byte = 1 // play the stored pattern from power-up
)
