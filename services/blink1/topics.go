package blink1

import "blink1-go/bus"

// Telemetry topic tokens.
const (
	TokBlink1     = "blink1"
	TokColor      = "color"
	TokPlay       = "play"
	TokServerDown = "serverdown"
	TokCommand    = "command"
	TokState      = "state"
)

// Lifecycle levels.
const (
	LevelBooting = "booting"
	LevelRunning = "running"
	LevelStopped = "stopped"
)

// Play reasons.
const (
	ReasonCommand   = "command"
	ReasonAutostart = "autostart"
	ReasonBoot      = "boot"
)

// Topic returns blink1/<id>/<leaf>.
func Topic(id, leaf string) bus.Topic { return bus.T(TokBlink1, id, leaf) }
