package hostlib

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"blink1-go/errcode"
	"blink1-go/services/blink1/gamma"
	"blink1-go/types"
)

// fakeConn records SET reports and answers GET with a canned reply.
type fakeConn struct {
	mu     sync.Mutex
	sets   [][]byte
	reply  []byte
	setErr error
	closed int
}

func (c *fakeConn) SetFeature(_ context.Context, r []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return 0, c.setErr
	}
	c.sets = append(c.sets, append([]byte(nil), r...))
	return len(r), nil
}

func (c *fakeConn) GetFeature(r []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copy(r, c.reply), nil
}

func (c *fakeConn) Close() error { c.closed++; return nil }

func (c *fakeConn) last() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sets[len(c.sets)-1]
}

type fakeBackend struct {
	devs  []DeviceInfo
	conns map[string]*fakeConn
}

func (b *fakeBackend) Enumerate() ([]DeviceInfo, error) { return b.devs, nil }

func (b *fakeBackend) OpenPath(p string) (Conn, error) {
	c, ok := b.conns[p]
	if !ok {
		return nil, errors.New("no such path")
	}
	return c, nil
}

func blink(path, serial string) DeviceInfo {
	return DeviceInfo{Path: path, Serial: serial, VendorID: VendorID, ProductID: ProductID}
}

func newFake() (*fakeBackend, *fakeConn) {
	c := &fakeConn{}
	return &fakeBackend{
		devs:  []DeviceInfo{blink("p0", "B0000001")},
		conns: map[string]*fakeConn{"p0": c},
	}, c
}

func openFake(t *testing.T, opts ...Option) (*Device, *fakeConn) {
	t.Helper()
	be, c := newFake()
	lib := New(be, append([]Option{WithSettle(0)}, opts...)...)
	d, err := lib.Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return d, c
}

func TestEnumerate_FiltersAndSortsBySerial(t *testing.T) {
	be := &fakeBackend{devs: []DeviceInfo{
		blink("/dev/b", "CCCC"),
		{Path: "/dev/mouse", Serial: "0000", VendorID: 0x046d, ProductID: 0xc077},
		blink("/dev/a", "AAAA"),
		blink("/dev/c", "BBBB"),
		{Path: "/dev/zero-ids", Serial: "0001"},
	}}
	lib := New(be)
	n, err := lib.Enumerate()
	if err != nil || n != 3 {
		t.Fatalf("Enumerate = %d, %v", n, err)
	}
	want := []struct{ path, serial string }{{"/dev/a", "AAAA"}, {"/dev/c", "BBBB"}, {"/dev/b", "CCCC"}}
	for i, w := range want {
		d, _ := lib.Cached(i)
		if d.Path != w.path || d.Serial != w.serial {
			t.Fatalf("cached[%d] = %+v, want %v", i, d, w)
		}
	}
	if _, err := lib.Cached(3); errcode.Of(err) != errcode.NotFound {
		t.Fatalf("Cached(3) err = %v", err)
	}
}

func TestOpen_Variants(t *testing.T) {
	be, _ := newFake()
	lib := New(be)

	if _, err := lib.OpenBySerial("B0000001"); err != nil {
		t.Fatalf("OpenBySerial: %v", err)
	}
	if _, err := lib.OpenBySerial("nope"); errcode.Of(err) != errcode.NotFound {
		t.Fatalf("unknown serial err = %v", err)
	}
	if _, err := lib.OpenByPath(""); errcode.Of(err) != errcode.InvalidParams {
		t.Fatalf("empty path err = %v", err)
	}
	if _, err := lib.OpenByPath("missing"); errcode.Of(err) != errcode.NotFound {
		t.Fatalf("missing path err = %v", err)
	}
	d, err := lib.OpenByIndex(0)
	if err != nil || d.Info().Serial != "B0000001" {
		t.Fatalf("OpenByIndex: %+v %v", d, err)
	}

	empty := New(&fakeBackend{})
	if _, err := empty.Open(); errcode.Result(err) >= 0 {
		t.Fatalf("Open with no devices: %v", err)
	}
}

func TestFadeToRGB_Encoding(t *testing.T) {
	d, c := openFake(t, WithDegamma(false))
	if err := d.FadeToRGB(context.Background(), 2570, types.RGB{R: 1, G: 2, B: 3}); err != nil {
		t.Fatal(err)
	}
	// 2570ms = 257 ticks = 0x0101; the low byte must not be taken mod 255.
	want := []byte{1, 'c', 1, 2, 3, 0x01, 0x01, 0, 0}
	if got := c.last(); string(got) != string(want) {
		t.Fatalf("report = %v, want %v", got, want)
	}
}

func TestDegamma_PerLibrary(t *testing.T) {
	d, c := openFake(t)
	if !d.lib.Degamma() {
		t.Fatal("degamma must default on")
	}
	_ = d.SetRGB(context.Background(), types.RGB{R: 128, G: 255})
	if got := c.last(); got[2] != gamma.Degamma(128) || got[3] != 255 {
		t.Fatalf("degamma report = %v", got)
	}

	d.lib.SetDegamma(false)
	_ = d.SetRGB(context.Background(), types.RGB{R: 128})
	if got := c.last(); got[2] != 128 {
		t.Fatalf("raw report = %v", got)
	}

	// Pattern lines are stored as given.
	d.lib.SetDegamma(true)
	_ = d.WritePatternLine(context.Background(), 100, types.RGB{R: 128}, 4)
	if got := c.last(); got[1] != 'P' || got[2] != 128 || got[7] != 4 {
		t.Fatalf("pattern report = %v", got)
	}
}

func TestServerDown_TimeAtBytesFourFive(t *testing.T) {
	d, c := openFake(t)
	_ = d.ServerDown(context.Background(), true, 5000)
	got := c.last()
	if got[1] != 'D' || got[2] != 1 || got[5] != 0x01 || got[6] != 0xf4 {
		t.Fatalf("serverdown report = %v", got)
	}
}

func TestVersion_Parsing(t *testing.T) {
	d, c := openFake(t)
	c.reply = []byte{1, 'v', '1', '2', 0, 0, 0, 0, 0}
	v, err := d.Version(context.Background())
	if err != nil || v != 102 {
		t.Fatalf("Version = %d, %v", v, err)
	}
}

func TestSelfTest_BadMagic(t *testing.T) {
	d, c := openFake(t)
	c.reply = []byte{1, 0, 0, 0, 0, 0, 0, 0, 0}
	if _, err := d.SelfTest(context.Background()); errcode.Of(err) != errcode.IO {
		t.Fatalf("err = %v", err)
	}
}

func TestClose_IdempotentThenNotOpen(t *testing.T) {
	d, c := openFake(t)
	if err := d.Close(); err != nil {
		t.Fatal(err)
	}
	if err := d.Close(); err != nil {
		t.Fatal(err)
	}
	if c.closed != 1 {
		t.Fatalf("conn closed %d times", c.closed)
	}
	err := d.SetRGB(context.Background(), types.Black)
	if errcode.Result(err) != -1 {
		t.Fatalf("closed device result = %d", errcode.Result(err))
	}
}

func TestWrite_BackendErrorIsIO(t *testing.T) {
	d, c := openFake(t)
	c.setErr = errors.New("pipe")
	if err := d.Play(context.Background(), true, 0); errcode.Of(err) != errcode.IO {
		t.Fatalf("err = %v", err)
	}
}

func TestRead_SettleRespectsContext(t *testing.T) {
	be, c := newFake()
	c.reply = []byte{1, 'v', '1', '0'}
	lib := New(be, WithSettle(time.Second))
	d, _ := lib.Open()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := d.Version(ctx); errcode.Of(err) != errcode.Timeout {
		t.Fatalf("err = %v", err)
	}
}

func TestJoin_RoutesOpenToOwner(t *testing.T) {
	ca, cb := &fakeConn{}, &fakeConn{}
	a := &fakeBackend{devs: []DeviceInfo{blink("a:0", "B")}, conns: map[string]*fakeConn{"a:0": ca}}
	b := &fakeBackend{devs: []DeviceInfo{blink("b:0", "A")}, conns: map[string]*fakeConn{"b:0": cb}}
	lib := New(Join(a, b), WithSettle(0))
	if n, err := lib.Enumerate(); err != nil || n != 2 {
		t.Fatalf("Enumerate = %d, %v", n, err)
	}
	d, err := lib.OpenByIndex(0)
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()
	if d.Info().Path != "b:0" {
		t.Fatalf("opened %+v", d.Info())
	}
	if err := d.SetRGB(context.Background(), types.Black); err != nil {
		t.Fatal(err)
	}
	if len(cb.sets) != 1 || len(ca.sets) != 0 {
		t.Fatal("report went to the wrong backend")
	}
	if _, err := lib.OpenByPath("c:0"); errcode.Of(err) != errcode.NotFound {
		t.Fatalf("err = %v", err)
	}
}
