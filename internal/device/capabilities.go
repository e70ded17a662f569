package device

import (
	"fmt"
	"unsafe"

	"github.com/gvalkov/golang-evdev"
	"golang.org/x/sys/unix"
)

// AbsInfo mirrors the kernel's struct input_absinfo: the full geometry of a
// single absolute axis. golang-evdev's own AbsInfo type keeps these fields
// unexported, so the reader re-queries them directly via EVIOCGABS.
type AbsInfo struct {
	Value      int32
	Minimum    int32
	Maximum    int32
	Fuzz       int32
	Flat       int32
	Resolution int32
}

// Capabilities describes the set of event codes a device can produce,
// grouped the way the virtual sink needs to mirror them.
type Capabilities struct {
	Keys    []uint16
	RelAxes []uint16
	AbsAxes map[uint16]AbsInfo
}

const (
	iocRead       = 2
	evIOCGABSBase = 0x40 // EVIOCGABS(abs) = _IOR('E', 0x40 + abs, struct input_absinfo)
)

// evIOCGABS computes the ioctl request number for EVIOCGABS(axis) using the
// kernel's _IOC(dir, 'E', nr, size) encoding directly, the same construction
// golang-evdev itself can't expose for this particular request.
func evIOCGABS(axis uint16) uintptr {
	size := unsafe.Sizeof(AbsInfo{})
	return uintptr((iocRead << 30) | (int('E') << 8) | (evIOCGABSBase + int(axis)) | (int(size) << 16))
}

func ioctlAbsInfo(fd uintptr, axis uint16) (AbsInfo, error) {
	var info AbsInfo
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, evIOCGABS(axis), uintptr(unsafe.Pointer(&info)))
	if errno != 0 {
		return AbsInfo{}, fmt.Errorf("EVIOCGABS(%d): %w", axis, errno)
	}
	return info, nil
}

// capabilitiesOf extracts Keys, RelAxes, and (queried individually) AbsAxes
// from an opened golang-evdev device.
func capabilitiesOf(dev *evdev.InputDevice) (Capabilities, error) {
	caps := Capabilities{AbsAxes: make(map[uint16]AbsInfo)}

	for capType, codes := range dev.Capabilities {
		switch EventType(capType.Type) {
		case EvKey:
			for _, c := range codes {
				caps.Keys = append(caps.Keys, uint16(c.Code))
			}
		case EvRel:
			for _, c := range codes {
				caps.RelAxes = append(caps.RelAxes, uint16(c.Code))
			}
		case EvAbs:
			for _, c := range codes {
				axis := uint16(c.Code)
				info, err := ioctlAbsInfo(dev.File.Fd(), axis)
				if err != nil {
					return Capabilities{}, err
				}
				caps.AbsAxes[axis] = info
			}
		}
	}

	return caps, nil
}

// HasKey reports whether code is among the device's supported key codes.
func (c Capabilities) HasKey(code uint16) bool {
	for _, k := range c.Keys {
		if k == code {
			return true
		}
	}
	return false
}
