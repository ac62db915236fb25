package blink1

import (
	"blink1-go/services/blink1/internal/pattern"
	"blink1-go/services/blink1/proto"
	"blink1-go/types"
)

// HandleCommand applies one packet. Replies are written into buf; opcodes
// outside the command set leave the device and buf untouched.
func (d *Device) HandleCommand(buf *proto.Buffer) {
	now := d.clk.Now()
	cmd := proto.Decode(buf)

	switch c := cmd.(type) {
	case proto.Fade:
		d.player.Pause()
		d.fader.SetDestination(d.mapper.Map(c.Color), c.Ticks)
		d.publishColor(now)
		d.publishPlay(now, ReasonCommand)

	case proto.SetNow:
		col := d.mapper.Map(c.Color)
		d.fader.SetDestination(col, 0)
		d.fader.SetCurrent(col)
		d.publishColor(now)

	case proto.Play:
		if c.On {
			d.player.Play(c.Position, now)
		} else {
			d.player.Pause()
		}
		d.publishPlay(now, ReasonCommand)

	case proto.WritePattern:
		i := pattern.Index(c.Index)
		d.table[i] = c.Line
		if err := d.store.WritePattern(i, c.Line); err != nil {
			println("[blink1] pattern write failed:", err.Error())
		}

	case proto.ReadEE:
		v, err := d.store.ReadByte(uint16(c.Addr))
		if err != nil {
			println("[blink1] eeprom read failed:", err.Error())
			v = 0xff
		}
		proto.PutReadEE(buf, v)

	case proto.WriteEE:
		if err := d.store.WriteByte(uint16(c.Addr), c.Value); err != nil {
			println("[blink1] eeprom write failed:", err.Error())
		}

	case proto.ServerDown:
		d.setServerDown(now, c.On, c.Ticks)

	case proto.Version:
		proto.PutVersion(buf, d.cfg.VersionMajor, d.cfg.VersionMinor)

	case proto.SelfTest:
		proto.PutSelfTest(buf, d.tr.SessionEstablished())

	default:
		return
	}
	d.pub(TokCommand, types.CommandEvent{Op: cmd.Op(), TSms: now}, false)
}
