// Package hostlib is the host-side library for blink(1) devices: discovery,
// open/close and the typed command helpers.
//
// All calls return errcode-coded errors; errcode.Result converts them to the
// legacy integer results (0 ok, -1 not open, other failures negative).
package hostlib

import (
	"sort"
	"sync"
	"time"

	"blink1-go/errcode"
	"blink1-go/services/blink1/gamma"
	"blink1-go/types"

	"github.com/rs/zerolog"
)

const (
	defaultSettle  = 50 * time.Millisecond
	defaultTimeout = time.Second
)

// Option configures a Library.
type Option func(*Library)

// WithLogger sets the logger (default: disabled).
func WithLogger(l zerolog.Logger) Option { return func(lib *Library) { lib.log = l } }

// WithSettle sets the pause between the write and read halves of Read.
func WithSettle(d time.Duration) Option { return func(lib *Library) { lib.settle = d } }

// WithTimeout bounds each report transfer.
func WithTimeout(d time.Duration) Option { return func(lib *Library) { lib.timeout = d } }

// WithDegamma sets the initial degamma state (default on).
func WithDegamma(on bool) Option { return func(lib *Library) { lib.mapper.Enabled = on } }

// Library holds the enumeration cache and the degamma setting. It is safe
// for concurrent use.
type Library struct {
	be      Backend
	log     zerolog.Logger
	settle  time.Duration
	timeout time.Duration

	mu     sync.Mutex
	mapper gamma.Mapper
	cached []DeviceInfo
}

// New returns a library over be.
func New(be Backend, opts ...Option) *Library {
	l := &Library{
		be:      be,
		log:     zerolog.Nop(),
		settle:  defaultSettle,
		timeout: defaultTimeout,
		mapper:  gamma.Mapper{Enabled: true},
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Enumerate refreshes the cache with blink(1) devices, sorted by serial
// (path breaks ties), and returns the count.
func (l *Library) Enumerate() (int, error) {
	return l.EnumerateByVidPid(VendorID, ProductID)
}

// EnumerateByVidPid is Enumerate for another USB identity.
func (l *Library) EnumerateByVidPid(vid, pid uint16) (int, error) {
	all, err := l.be.Enumerate()
	if err != nil {
		return 0, errcode.Wrap(errcode.IO, "enumerate", err)
	}
	var found []DeviceInfo
	for _, d := range all {
		if d.VendorID == 0 || d.ProductID == 0 {
			continue
		}
		if d.VendorID == vid && d.ProductID == pid {
			found = append(found, d)
		}
	}
	sort.SliceStable(found, func(i, j int) bool {
		if found[i].Serial != found[j].Serial {
			return found[i].Serial < found[j].Serial
		}
		return found[i].Path < found[j].Path
	})

	l.mu.Lock()
	l.cached = found
	l.mu.Unlock()
	l.log.Debug().Int("count", len(found)).Msg("enumerated devices")
	return len(found), nil
}

// Count is the number of cached devices.
func (l *Library) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.cached)
}

// Cached returns cached device i.
func (l *Library) Cached(i int) (DeviceInfo, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i < 0 || i >= len(l.cached) {
		return DeviceInfo{}, &errcode.E{C: errcode.NotFound, Op: "cached", Msg: "index out of range"}
	}
	return l.cached[i], nil
}

// OpenByPath opens the device at path.
func (l *Library) OpenByPath(path string) (*Device, error) {
	if path == "" {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "open_path", Msg: "empty path"}
	}
	c, err := l.be.OpenPath(path)
	if err != nil {
		return nil, errcode.Wrap(errcode.NotFound, "open_path", err)
	}
	info := DeviceInfo{Path: path}
	l.mu.Lock()
	for _, d := range l.cached {
		if d.Path == path {
			info = d
			break
		}
	}
	l.mu.Unlock()
	l.log.Info().Str("path", path).Str("serial", info.Serial).Msg("opened device")
	return &Device{lib: l, conn: c, info: info}, nil
}

// OpenBySerial opens the device with the given serial, enumerating first.
func (l *Library) OpenBySerial(serial string) (*Device, error) {
	if serial == "" {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "open_serial", Msg: "empty serial"}
	}
	if _, err := l.Enumerate(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	var path string
	for _, d := range l.cached {
		if d.Serial == serial {
			path = d.Path
			break
		}
	}
	l.mu.Unlock()
	if path == "" {
		return nil, &errcode.E{C: errcode.NotFound, Op: "open_serial", Msg: serial}
	}
	return l.OpenByPath(path)
}

// OpenByIndex opens cached device i.
func (l *Library) OpenByIndex(i int) (*Device, error) {
	d, err := l.Cached(i)
	if err != nil {
		return nil, err
	}
	return l.OpenByPath(d.Path)
}

// Open opens the first device found.
func (l *Library) Open() (*Device, error) {
	n, err := l.Enumerate()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, &errcode.E{C: errcode.NotFound, Op: "open", Msg: "no devices"}
	}
	return l.OpenByIndex(0)
}

// SetDegamma switches colour correction for all devices of this library.
func (l *Library) SetDegamma(on bool) {
	l.mu.Lock()
	l.mapper.Enabled = on
	l.mu.Unlock()
}

// Degamma reports whether colour correction is on.
func (l *Library) Degamma() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.mapper.Enabled
}

func (l *Library) mapColor(c types.RGB) types.RGB {
	l.mu.Lock()
	m := l.mapper
	l.mu.Unlock()
	return m.Map(c)
}
