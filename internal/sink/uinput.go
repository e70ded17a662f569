package sink

import (
	"encoding/binary"
	"fmt"
	"os"
	"sync"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/mousemapper/mousemapper/internal/device"
)

// Raw uinput ioctl requests: the _IOW/_IOC-encoded request numbers the
// kernel's uinput.h defines, used directly since no high-level wrapper
// exposes the full UI_DEV_SETUP/UI_ABS_SETUP sequence this package needs.
const (
	uiSetEVBit  = 0x40045564
	uiSetKeyBit = 0x40045565
	uiSetRelBit = 0x40045566
	uiSetAbsBit = 0x40045567
	uiDevSetup  = 0x405c5503
	uiAbsSetup  = 0x401c5504
	uiDevCreate = 0x5501
	uiDevDestroy = 0x5502

	busUSB = 0x03
)

// Kernel event codes not exported by golang-evdev (added to the kernel after
// that binding's generation): the hi-resolution wheel axes.
const (
	relWheelHiRes  uint16 = 0x0b
	relHWheelHiRes uint16 = 0x0c
)

var standardRelAxes = []uint16{
	relX, relY, relWheel, relHWheel, relWheelHiRes, relHWheelHiRes,
}

const (
	relX     uint16 = 0x00
	relY     uint16 = 0x01
	relWheel uint16 = 0x08
	relHWheel uint16 = 0x06
)

var standardButtons = []uint16{
	btnLeft, btnRight, btnMiddle, btnSide, btnExtra, btnForward, btnBack, btnTask,
}

const (
	btnLeft    uint16 = 0x110
	btnRight   uint16 = 0x111
	btnMiddle  uint16 = 0x112
	btnSide    uint16 = 0x113
	btnExtra   uint16 = 0x114
	btnForward uint16 = 0x115
	btnBack    uint16 = 0x116
	btnTask    uint16 = 0x117
)

// widenedKeyRange is the [1, 248] key range every sink accepts,
// regardless of what the source device natively supports.
func widenedKeyRange() []uint16 {
	codes := make([]uint16, 0, 248)
	for c := uint16(1); c <= 248; c++ {
		codes = append(codes, c)
	}
	return codes
}

type uinputSetupID struct {
	Bustype uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

type uinputSetup struct {
	ID        uinputSetupID
	Name      [80]byte
	FFEffects uint32
}

// Matches struct uinput_abs_setup: a code followed by a full input_absinfo.
type uinputAbsSetup struct {
	Code uint16
	_    [2]byte // alignment padding, as in the kernel struct
	Info device.AbsInfo
}

// wireEvent mirrors struct input_event for direct writes to /dev/uinput.
type wireEvent struct {
	Sec, Usec int64
	Type      uint16
	Code      uint16
	Value     int32
}

func (e wireEvent) marshal() []byte {
	buf := make([]byte, 24)
	binary.LittleEndian.PutUint64(buf[0:8], uint64(e.Sec))
	binary.LittleEndian.PutUint64(buf[8:16], uint64(e.Usec))
	binary.LittleEndian.PutUint16(buf[16:18], e.Type)
	binary.LittleEndian.PutUint16(buf[18:20], e.Code)
	binary.LittleEndian.PutUint32(buf[20:24], uint32(e.Value))
	return buf
}

// Uinput is the real virtual sink, driving /dev/uinput directly through
// raw ioctls rather than a high-level constructor library, since none of
// those expose the full UI_DEV_SETUP/UI_ABS_SETUP sequence needed to
// mirror an arbitrary source device's capability set.
type Uinput struct {
	mu sync.Mutex
	f  *os.File
}

func ioctl(fd uintptr, req uintptr, arg uintptr) error {
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, req, arg); errno != 0 {
		return errno
	}
	return nil
}

// FromSource builds a virtual device mirroring caps: its key set widened to
// [1, 248], its relative axes copied as-is, and its absolute axes copied
// with full geometry.
func FromSource(caps device.Capabilities) (*Uinput, error) {
	keys := make(map[uint16]struct{})
	for _, k := range caps.Keys {
		keys[k] = struct{}{}
	}
	for _, k := range widenedKeyRange() {
		keys[k] = struct{}{}
	}
	keySlice := make([]uint16, 0, len(keys))
	for k := range keys {
		keySlice = append(keySlice, k)
	}
	return build(keySlice, caps.RelAxes, caps.AbsAxes)
}

// Standard builds a sink with the standard mouse buttons, the widened
// keyboard range, and the six standard relative axes, for use when no
// source device is available.
func Standard() (*Uinput, error) {
	keys := append([]uint16{}, standardButtons...)
	keys = append(keys, widenedKeyRange()...)
	return build(keys, standardRelAxes, nil)
}

func build(keys, relAxes []uint16, absAxes map[uint16]device.AbsInfo) (*Uinput, error) {
	f, err := os.OpenFile("/dev/uinput", os.O_WRONLY|os.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("open /dev/uinput: %w", err)
	}

	fd := f.Fd()
	if err := ioctl(fd, uiSetEVBit, uintptr(device.EvKey)); err != nil {
		f.Close()
		return nil, fmt.Errorf("UI_SET_EVBIT(EV_KEY): %w", err)
	}
	for _, k := range keys {
		if err := ioctl(fd, uiSetKeyBit, uintptr(k)); err != nil {
			f.Close()
			return nil, fmt.Errorf("UI_SET_KEYBIT(%d): %w", k, err)
		}
	}

	if len(relAxes) > 0 {
		if err := ioctl(fd, uiSetEVBit, uintptr(device.EvRel)); err != nil {
			f.Close()
			return nil, fmt.Errorf("UI_SET_EVBIT(EV_REL): %w", err)
		}
		for _, a := range relAxes {
			if err := ioctl(fd, uiSetRelBit, uintptr(a)); err != nil {
				f.Close()
				return nil, fmt.Errorf("UI_SET_RELBIT(%d): %w", a, err)
			}
		}
	}

	if len(absAxes) > 0 {
		if err := ioctl(fd, uiSetEVBit, uintptr(device.EvAbs)); err != nil {
			f.Close()
			return nil, fmt.Errorf("UI_SET_EVBIT(EV_ABS): %w", err)
		}
		for code, info := range absAxes {
			if err := ioctl(fd, uiSetAbsBit, uintptr(code)); err != nil {
				f.Close()
				return nil, fmt.Errorf("UI_SET_ABSBIT(%d): %w", code, err)
			}
			setup := uinputAbsSetup{Code: code, Info: info}
			if err := ioctl(fd, uiAbsSetup, uintptr(unsafe.Pointer(&setup))); err != nil {
				f.Close()
				return nil, fmt.Errorf("UI_ABS_SETUP(%d): %w", code, err)
			}
		}
	}

	setup := uinputSetup{
		ID: uinputSetupID{Bustype: busUSB, Vendor: 0x1d6b, Product: 0x0101, Version: 1},
	}
	copy(setup.Name[:], VirtualDeviceName)
	if err := ioctl(fd, uiDevSetup, uintptr(unsafe.Pointer(&setup))); err != nil {
		f.Close()
		return nil, fmt.Errorf("UI_DEV_SETUP: %w", err)
	}
	if err := ioctl(fd, uiDevCreate, 0); err != nil {
		f.Close()
		return nil, fmt.Errorf("UI_DEV_CREATE: %w", err)
	}

	// Give udev a moment to finish registering the new node before
	// callers start writing events to it.
	time.Sleep(100 * time.Millisecond)

	return &Uinput{f: f}, nil
}

func wireFor(e device.Event) wireEvent {
	return wireEvent{
		Sec:   e.Time.Unix(),
		Usec:  int64(e.Time.Nanosecond() / 1000),
		Type:  uint16(e.Type),
		Code:  e.Code,
		Value: e.Value,
	}
}

// Emit writes batch as one logical write: the events' wire forms are
// concatenated in order and written with a single Write call, under a
// single lock acquisition.
func (u *Uinput) Emit(batch []device.Event) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	buf := make([]byte, 0, 24*len(batch))
	for _, e := range batch {
		buf = append(buf, wireFor(e).marshal()...)
	}
	if _, err := u.f.Write(buf); err != nil {
		return fmt.Errorf("emit: %w", err)
	}
	return nil
}

func (u *Uinput) Press(code uint16) error {
	return u.Emit([]device.Event{
		device.NewKeyEvent(code, device.KeyPress),
		device.NewSyn(),
	})
}

func (u *Uinput) Release(code uint16) error {
	return u.Emit([]device.Event{
		device.NewKeyEvent(code, device.KeyRelease),
		device.NewSyn(),
	})
}

// Click writes the press+SYN and release+SYN as two separate writes so
// userspace consumers observe two distinct report frames.
func (u *Uinput) Click(code uint16) error {
	if err := u.Press(code); err != nil {
		return err
	}
	return u.Release(code)
}

func (u *Uinput) Close() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	_ = ioctl(u.f.Fd(), uiDevDestroy, 0)
	return u.f.Close()
}
