//go:build linux && drm

package drm

import (
	"fmt"
	"image"
	"os"
	"unsafe"

	"github.com/gogpu/gg"
	"golang.org/x/sys/unix"

	"github.com/gogpu/ggsim/backend"
	"github.com/gogpu/ggsim/event"
)

// Name is the registry name of the DRM backend.
const Name = "drm"

// DefaultDevice is the card node the backend opens when the config
// does not name one.
const DefaultDevice = "/dev/dri/card0"

// Descriptor returns the registry entry for the DRM backend.
func Descriptor() backend.Descriptor {
	return backend.Descriptor{
		Name: Name,
		Kind: backend.KindDisplay,
		Init: func(cfg backend.Config) (backend.Handle, error) {
			dev := cfg.DRMDevice
			if dev == "" {
				dev = DefaultDevice
			}
			return Open(dev)
		},
	}
}

// ioctl request numbers from drm/drm.h.
const (
	ioctlSetMaster        = 0x641e
	ioctlModeGetResources = 0xc04064a0
	ioctlModeSetCRTC      = 0xc06864a2
	ioctlModeGetEncoder   = 0xc01464a6
	ioctlModeGetConnector = 0xc05064a7
	ioctlModeAddFB        = 0xc01c64ae
	ioctlModeRmFB         = 0xc00464af
	ioctlModeCreateDumb   = 0xc02064b2
	ioctlModeMapDumb      = 0xc01064b3
	ioctlModeDestroyDumb  = 0xc00464b4

	connectionConnected = 1
)

type modeCardRes struct {
	FBIDPtr         uint64
	CRTCIDPtr       uint64
	ConnectorIDPtr  uint64
	EncoderIDPtr    uint64
	CountFBs        uint32
	CountCRTCs      uint32
	CountConnectors uint32
	CountEncoders   uint32
	MinWidth        uint32
	MaxWidth        uint32
	MinHeight       uint32
	MaxHeight       uint32
}

type modeInfo struct {
	Clock      uint32
	HDisplay   uint16
	HSyncStart uint16
	HSyncEnd   uint16
	HTotal     uint16
	HSkew      uint16
	VDisplay   uint16
	VSyncStart uint16
	VSyncEnd   uint16
	VTotal     uint16
	VScan      uint16
	VRefresh   uint32
	Flags      uint32
	Type       uint32
	Name       [32]byte
}

type modeGetConnector struct {
	EncodersPtr     uint64
	ModesPtr        uint64
	PropsPtr        uint64
	PropValuesPtr   uint64
	CountModes      uint32
	CountProps      uint32
	CountEncoders   uint32
	EncoderID       uint32
	ConnectorID     uint32
	ConnectorType   uint32
	ConnectorTypeID uint32
	Connection      uint32
	MMWidth         uint32
	MMHeight        uint32
	Subpixel        uint32
	Pad             uint32
}

type modeGetEncoder struct {
	EncoderID      uint32
	EncoderType    uint32
	CRTCID         uint32
	PossibleCRTCs  uint32
	PossibleClones uint32
}

type modeCreateDumb struct {
	Height uint32
	Width  uint32
	BPP    uint32
	Flags  uint32
	Handle uint32
	Pitch  uint32
	Size   uint64
}

type modeMapDumb struct {
	Handle uint32
	Pad    uint32
	Offset uint64
}

type modeDestroyDumb struct {
	Handle uint32
}

type modeFBCmd struct {
	FBID   uint32
	Width  uint32
	Height uint32
	Pitch  uint32
	BPP    uint32
	Depth  uint32
	Handle uint32
}

type modeCRTC struct {
	SetConnectorsPtr uint64
	CountConnectors  uint32
	CRTCID           uint32
	FBID             uint32
	X                uint32
	Y                uint32
	GammaSize        uint32
	ModeValid        uint32
	Mode             modeInfo
}

func ioctl(fd int, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

// Card is the live DRM display handle: a mapped dumb buffer scanned
// out on the first connected connector's preferred mode.
type Card struct {
	file      *os.File
	mem       []byte
	width     int
	height    int
	pitch     int
	fbID      uint32
	dumb      uint32
	connector uint32
	closed    bool
}

// Open initializes a dumb-buffer scanout on the DRM device at path.
func Open(path string) (*Card, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("drm: open %s: %w", path, err)
	}
	fd := int(f.Fd())

	// Master is required for modesetting; failing is fine when the
	// process is the only DRM client.
	_, _, _ = unix.Syscall(unix.SYS_IOCTL, uintptr(fd), ioctlSetMaster, 0)

	conn, mode, crtc, err := pickOutput(fd)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("drm: %s: %w", path, err)
	}

	create := modeCreateDumb{
		Width:  uint32(mode.HDisplay),
		Height: uint32(mode.VDisplay),
		BPP:    32,
	}
	if err := ioctl(fd, ioctlModeCreateDumb, unsafe.Pointer(&create)); err != nil {
		f.Close()
		return nil, fmt.Errorf("drm: create dumb buffer: %w", err)
	}

	c := &Card{
		file:   f,
		width:  int(mode.HDisplay),
		height: int(mode.VDisplay),
		pitch:  int(create.Pitch),
		dumb:   create.Handle,
	}

	fb := modeFBCmd{
		Width:  create.Width,
		Height: create.Height,
		Pitch:  create.Pitch,
		BPP:    32,
		Depth:  24,
		Handle: create.Handle,
	}
	if err := ioctl(fd, ioctlModeAddFB, unsafe.Pointer(&fb)); err != nil {
		c.release()
		return nil, fmt.Errorf("drm: add framebuffer: %w", err)
	}
	c.fbID = fb.FBID

	mmap := modeMapDumb{Handle: create.Handle}
	if err := ioctl(fd, ioctlModeMapDumb, unsafe.Pointer(&mmap)); err != nil {
		c.release()
		return nil, fmt.Errorf("drm: map dumb buffer: %w", err)
	}
	mem, err := unix.Mmap(fd, int64(mmap.Offset), int(create.Size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		c.release()
		return nil, fmt.Errorf("drm: mmap scanout: %w", err)
	}
	c.mem = mem
	c.connector = conn

	set := modeCRTC{
		SetConnectorsPtr: uint64(uintptr(unsafe.Pointer(&c.connector))),
		CountConnectors:  1,
		CRTCID:           crtc,
		FBID:             c.fbID,
		ModeValid:        1,
		Mode:             mode,
	}
	if err := ioctl(fd, ioctlModeSetCRTC, unsafe.Pointer(&set)); err != nil {
		c.release()
		return nil, fmt.Errorf("drm: set crtc: %w", err)
	}
	return c, nil
}

// pickOutput finds the first connected connector with at least one
// mode, and returns it with its preferred (first) mode and a CRTC.
func pickOutput(fd int) (connector uint32, mode modeInfo, crtc uint32, err error) {
	var res modeCardRes
	if err = ioctl(fd, ioctlModeGetResources, unsafe.Pointer(&res)); err != nil {
		return 0, modeInfo{}, 0, fmt.Errorf("get resources: %w", err)
	}
	if res.CountConnectors == 0 || res.CountCRTCs == 0 {
		return 0, modeInfo{}, 0, fmt.Errorf("no connectors or crtcs")
	}

	connectors := make([]uint32, res.CountConnectors)
	crtcs := make([]uint32, res.CountCRTCs)
	res.ConnectorIDPtr = uint64(uintptr(unsafe.Pointer(&connectors[0])))
	res.CRTCIDPtr = uint64(uintptr(unsafe.Pointer(&crtcs[0])))
	res.FBIDPtr = 0
	res.EncoderIDPtr = 0
	res.CountFBs = 0
	res.CountEncoders = 0
	if err = ioctl(fd, ioctlModeGetResources, unsafe.Pointer(&res)); err != nil {
		return 0, modeInfo{}, 0, fmt.Errorf("get resources: %w", err)
	}

	for _, id := range connectors {
		var gc modeGetConnector
		gc.ConnectorID = id
		if err := ioctl(fd, ioctlModeGetConnector, unsafe.Pointer(&gc)); err != nil {
			continue
		}
		if gc.Connection != connectionConnected || gc.CountModes == 0 {
			continue
		}

		modes := make([]modeInfo, gc.CountModes)
		gc.ModesPtr = uint64(uintptr(unsafe.Pointer(&modes[0])))
		gc.CountProps = 0
		gc.CountEncoders = 0
		if err := ioctl(fd, ioctlModeGetConnector, unsafe.Pointer(&gc)); err != nil {
			continue
		}

		// The kernel sorts the preferred mode first.
		crtcID := crtcs[0]
		if gc.EncoderID != 0 {
			enc := modeGetEncoder{EncoderID: gc.EncoderID}
			if err := ioctl(fd, ioctlModeGetEncoder, unsafe.Pointer(&enc)); err == nil && enc.CRTCID != 0 {
				crtcID = enc.CRTCID
			}
		}
		return id, modes[0], crtcID, nil
	}
	return 0, modeInfo{}, 0, fmt.Errorf("no connected connector")
}

// Size returns the scanout size in pixels.
func (c *Card) Size() (int, int) { return c.width, c.height }

// Poll is a no-op: the DRM backend produces no events. Input comes
// from a layered evdev backend.
func (c *Card) Poll(dst []event.Event) ([]event.Event, error) {
	if c.closed {
		return dst, backend.ErrSurfaceLost
	}
	return dst, nil
}

// Present copies the dirty region of frame into the scanout buffer,
// converting RGBA to the buffer's XRGB little-endian layout.
func (c *Card) Present(frame *gg.Pixmap, dirty image.Rectangle) error {
	if c.closed {
		return backend.ErrSurfaceLost
	}
	dirty = dirty.Intersect(image.Rect(0, 0, c.width, c.height))
	dirty = dirty.Intersect(image.Rect(0, 0, frame.Width(), frame.Height()))
	if dirty.Empty() {
		return nil
	}

	src := frame.Data()
	srcStride := frame.Width() * 4

	for y := dirty.Min.Y; y < dirty.Max.Y; y++ {
		srow := src[y*srcStride+dirty.Min.X*4:]
		drow := c.mem[y*c.pitch+dirty.Min.X*4:]
		for x := 0; x < dirty.Dx(); x++ {
			r, g, b := srow[x*4], srow[x*4+1], srow[x*4+2]
			drow[x*4] = b
			drow[x*4+1] = g
			drow[x*4+2] = r
			drow[x*4+3] = 0
		}
	}
	return nil
}

func (c *Card) release() {
	fd := int(c.file.Fd())
	if c.mem != nil {
		unix.Munmap(c.mem)
		c.mem = nil
	}
	if c.fbID != 0 {
		id := c.fbID
		ioctl(fd, ioctlModeRmFB, unsafe.Pointer(&id))
		c.fbID = 0
	}
	if c.dumb != 0 {
		destroy := modeDestroyDumb{Handle: c.dumb}
		ioctl(fd, ioctlModeDestroyDumb, unsafe.Pointer(&destroy))
		c.dumb = 0
	}
	c.file.Close()
}

// Close releases the scanout buffer and the device.
func (c *Card) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.release()
	return nil
}
