package types

// DeviceState is the retained lifecycle state of a device.
type DeviceState struct {
	Level  string `json:"level"`  // "booting", "running", "stopped"
	Status string `json:"status"` // short reason code
	TSms   uint32 `json:"ts_ms"`
}

// Heartbeat is a periodic summary of one device.
type Heartbeat struct {
	Seq     uint32 `json:"seq"`
	Color   RGB    `json:"color"`
	Playing bool   `json:"playing"`
	Pos     uint8  `json:"pos"`
	Armed   bool   `json:"serverdown_armed"`
}
