package types

// ---- Device telemetry (published on the bus by the device loop) ----

// ColorValue is the retained displayed colour of a device.
type ColorValue struct {
	Current     RGB    `json:"current"`
	Destination RGB    `json:"destination"`
	Remaining   uint16 `json:"remaining"`
	TSms        uint32 `json:"ts_ms"` // device ticks
}

// PlayState is the retained pattern playback state of a device.
type PlayState struct {
	Playing  bool   `json:"playing"`
	Position uint8  `json:"position"`
	Reason   string `json:"reason,omitempty"` // "command", "autostart", "boot"
	TSms     uint32 `json:"ts_ms"`
}

// ServerDownEvent reports a change of the dead-man's switch.
type ServerDownEvent struct {
	Armed    bool   `json:"armed"`
	Expired  bool   `json:"expired"`
	Deadline uint32 `json:"deadline"`
	TSms     uint32 `json:"ts_ms"`
}

// CommandEvent is published for every packet the device accepted.
type CommandEvent struct {
	Op   byte   `json:"op"`
	TSms uint32 `json:"ts_ms"`
}
