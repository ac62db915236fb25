// Package heartbeat periodically summarises one device from its telemetry:
// a println line for the console and a retained blink1/<id>/heartbeat
// message on the bus.
package heartbeat

import (
	"context"
	"time"

	"blink1-go/bus"
	"blink1-go/services/blink1"
	"blink1-go/types"
)

const TokHeartbeat = "heartbeat"

type Service struct {
	ID       string        // device id, default "0"
	Interval time.Duration // default 1s
	Quiet    bool          // no console output
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	colorSub := conn.Subscribe(blink1.Topic(s.ID, blink1.TokColor))
	playSub := conn.Subscribe(blink1.Topic(s.ID, blink1.TokPlay))
	sdSub := conn.Subscribe(blink1.Topic(s.ID, blink1.TokServerDown))
	defer conn.Unsubscribe(colorSub)
	defer conn.Unsubscribe(playSub)
	defer conn.Unsubscribe(sdSub)

	tick := time.NewTicker(s.Interval)
	defer tick.Stop()

	var hb types.Heartbeat
	for {
		select {
		case <-ctx.Done():
			if !s.Quiet {
				println("[heartbeat] stopping")
			}
			return
		case m := <-colorSub.Channel():
			if v, ok := m.Payload.(types.ColorValue); ok {
				hb.Color = v.Current
			}
		case m := <-playSub.Channel():
			if v, ok := m.Payload.(types.PlayState); ok {
				hb.Playing, hb.Pos = v.Playing, v.Position
			}
		case m := <-sdSub.Channel():
			if v, ok := m.Payload.(types.ServerDownEvent); ok {
				hb.Armed = v.Armed && !v.Expired
			}
		case <-tick.C:
			hb.Seq++
			if !s.Quiet {
				println("[heartbeat]", s.ID, hb.Color.String(), "playing", hb.Playing, "pos", hb.Pos)
			}
			conn.Publish(conn.NewMessage(blink1.Topic(s.ID, TokHeartbeat), hb, true))
		}
	}
}

// Start the heartbeat service.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	if s.ID == "" {
		s.ID = "0"
	}
	if s.Interval <= 0 {
		s.Interval = time.Second
	}
	go s.serviceLoop(ctx, conn)
	return nil
}
