package mathx

import "testing"

func TestClamp_SwapsBounds(t *testing.T) {
	if got := Clamp(5, 10, 0); got != 5 {
		t.Fatalf("Clamp(5,10,0) = %d", got)
	}
	if got := Clamp[uint8](200, 0, 9); got != 9 {
		t.Fatalf("Clamp(200,0,9) = %d", got)
	}
}

func TestScaleU8_Endpoints(t *testing.T) {
	for _, top := range []uint16{1, 255, 1000, 65535} {
		if ScaleU8(0, top) != 0 || ScaleU8(255, top) != top {
			t.Fatalf("endpoints wrong for top=%d", top)
		}
	}
	if ScaleU8(128, 1000) != 501 {
		t.Fatalf("ScaleU8(128,1000) = %d", ScaleU8(128, 1000))
	}
}

func TestStepToward_LandsExactly(t *testing.T) {
	for _, tc := range []struct{ from, to uint8 }{{0, 255}, {255, 0}, {7, 200}, {90, 3}, {42, 42}} {
		for n := uint16(1); n < 300; n += 37 {
			cur := tc.from
			for k := n; k > 0; k-- {
				cur = StepToward(cur, tc.to, k)
			}
			if cur != tc.to {
				t.Fatalf("%d->%d over %d steps ended at %d", tc.from, tc.to, n, cur)
			}
		}
	}
}
