package errcode

import (
	"errors"
	"testing"
)

func TestOf(t *testing.T) {
	cases := []struct {
		err  error
		want Code
	}{
		{nil, OK},
		{NotOpen, NotOpen},
		{&E{C: Timeout, Op: "set_feature"}, Timeout},
		{errors.New("boom"), Error},
	}
	for _, c := range cases {
		if got := Of(c.err); got != c.want {
			t.Fatalf("Of(%v) = %q, want %q", c.err, got, c.want)
		}
	}
}

func TestResult_NegativeForFailures(t *testing.T) {
	if Result(nil) != 0 {
		t.Fatal("nil error must map to 0")
	}
	if Result(NotOpen) != -1 {
		t.Fatalf("NotOpen = %d, want -1", Result(NotOpen))
	}
	for _, c := range []Code{NotFound, IO, Timeout, Busy, InvalidParams, Error} {
		if Result(c) >= 0 {
			t.Fatalf("Result(%q) = %d, want negative", c, Result(c))
		}
	}
}

func TestWrap_KeepsCause(t *testing.T) {
	cause := errors.New("nak")
	err := Wrap(IO, "eeprom_write", cause)
	if !errors.Is(err, cause) {
		t.Fatal("wrapped error lost its cause")
	}
	if Of(err) != IO {
		t.Fatalf("code = %q, want io", Of(err))
	}
	if err.Error() != "eeprom_write: io: nak" {
		t.Fatalf("message = %q", err.Error())
	}
	if Wrap(IO, "x", nil) != nil {
		t.Fatal("Wrap(nil) must be nil")
	}
}
