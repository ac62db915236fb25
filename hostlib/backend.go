package hostlib

import (
	"context"
	"errors"

	"blink1-go/errcode"
)

// USB identity of blink(1) devices.
const (
	VendorID  = 0x27b8
	ProductID = 0x01ed
)

// DeviceInfo is one enumerated HID device.
type DeviceInfo struct {
	Path      string
	Serial    string
	VendorID  uint16
	ProductID uint16
}

// Backend is the OS HID layer (hidapi or an in-process emulation).
type Backend interface {
	Enumerate() ([]DeviceInfo, error)
	OpenPath(path string) (Conn, error)
}

// Conn is an open HID device. Reports carry the report id in byte 0.
type Conn interface {
	SetFeature(ctx context.Context, report []byte) (int, error)
	GetFeature(report []byte) (int, error)
	Close() error
}

// Join presents several backends as one. Paths must not collide; OpenPath
// goes to the first backend that enumerated the path.
func Join(bs ...Backend) Backend { return joined(bs) }

type joined []Backend

func (j joined) Enumerate() ([]DeviceInfo, error) {
	var all []DeviceInfo
	var errs []error
	for _, b := range j {
		infos, err := b.Enumerate()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		all = append(all, infos...)
	}
	if len(all) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return all, nil
}

func (j joined) OpenPath(path string) (Conn, error) {
	for _, b := range j {
		infos, err := b.Enumerate()
		if err != nil {
			continue
		}
		for _, info := range infos {
			if info.Path == path {
				return b.OpenPath(path)
			}
		}
	}
	return nil, errcode.NotFound
}
