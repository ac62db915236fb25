package blink1

import (
	"blink1-go/services/blink1/internal/clock"
	"blink1-go/types"
)

// serverDown is the dead-man's switch armed by 'D'. The host is expected to
// re-arm it before it runs out.
type serverDown struct {
	enabled  bool
	fired    bool
	timeout  uint16 // tens of ms
	deadline uint32
}

func (s *serverDown) arm(now uint32, ticks uint16) {
	s.enabled = true
	s.fired = false
	s.timeout = ticks
	s.deadline = now + uint32(ticks)*10
}

func (s *serverDown) disarm() {
	*s = serverDown{}
}

// expired reports a due deadline once per arming.
func (s *serverDown) expired(now uint32) bool {
	if !s.enabled || s.fired || !clock.Due(now, s.deadline) {
		return false
	}
	s.fired = true
	return true
}

func (d *Device) setServerDown(now uint32, on bool, ticks uint16) {
	if on {
		d.sd.arm(now, ticks)
	} else {
		d.sd.disarm()
	}
	d.pub(TokServerDown, types.ServerDownEvent{
		Armed:    d.sd.enabled,
		Deadline: d.sd.deadline,
		TSms:     now,
	}, false)
}

func (d *Device) checkServerDown(now uint32) {
	if !d.sd.expired(now) {
		return
	}
	println("[blink1] server down")
	d.pub(TokServerDown, types.ServerDownEvent{
		Armed:    true,
		Expired:  true,
		Deadline: d.sd.deadline,
		TSms:     now,
	}, false)
	if d.cfg.OnServerDown != nil {
		d.cfg.OnServerDown(now)
	}
}

// ServerDownArmed reports whether the switch is armed and has not fired.
func (d *Device) ServerDownArmed() bool { return d.sd.enabled && !d.sd.fired }
