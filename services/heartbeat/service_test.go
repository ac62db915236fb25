package heartbeat

import (
	"context"
	"testing"
	"time"

	"blink1-go/bus"
	"blink1-go/services/blink1"
	"blink1-go/types"
)

func TestHeartbeat_SummarisesTelemetry(t *testing.T) {
	b := bus.NewBus(8)
	dev := b.NewConnection("dev")
	dev.Publish(dev.NewMessage(blink1.Topic("3", blink1.TokColor), types.ColorValue{Current: types.RGB{R: 9}}, true))
	dev.Publish(dev.NewMessage(blink1.Topic("3", blink1.TokPlay), types.PlayState{Playing: true, Position: 4}, true))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s := &Service{ID: "3", Interval: 20 * time.Millisecond, Quiet: true}
	if err := s.Start(ctx, b.NewConnection("heartbeat")); err != nil {
		t.Fatal(err)
	}

	obs := b.NewConnection("obs").Subscribe(blink1.Topic("3", TokHeartbeat))
	deadline := time.After(time.Second)
	for {
		select {
		case m := <-obs.Channel():
			hb := m.Payload.(types.Heartbeat)
			if hb.Color.R == 9 && hb.Playing && hb.Pos == 4 {
				if hb.Seq == 0 {
					t.Fatal("sequence not advanced")
				}
				return
			}
		case <-deadline:
			t.Fatal("no heartbeat with the device state")
		}
	}
}
