//go:build linux

package fbdev

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

// Name is the registry name of the framebuffer backend.
const Name = "fbdev"

// Descriptor returns the registry entry for the framebuffer backend.
func Descriptor() backend.Descriptor {
	return backend.Descriptor{
		Name: Name,
		Kind: backend.KindDisplay,
		Init: func(cfg backend.Config) (backend.Handle, error) {
			return Open(cfg.FramebufferDevice)
		},
	}
}

// ioctl request numbers from linux/fb.h.
const (
	fbioGetVScreenInfo = 0x4600
	fbioGetFScreenInfo = 0x4602
)

type fbBitfield struct {
	Offset   uint32
	Length   uint32
	MSBRight uint32
}

// fbVarScreenInfo mirrors struct fb_var_screeninfo.
type fbVarScreenInfo struct {
	XRes         uint32
	YRes         uint32
	XResVirtual  uint32
	YResVirtual  uint32
	XOffset      uint32
	YOffset      uint32
	BitsPerPixel uint32
	Grayscale    uint32
	Red          fbBitfield
	Green        fbBitfield
	Blue         fbBitfield
	Transp       fbBitfield
	Nonstd       uint32
	Activate     uint32
	Height       uint32
	Width        uint32
	AccelFlags   uint32
	Pixclock     uint32
	LeftMargin   uint32
	RightMargin  uint32
	UpperMargin  uint32
	LowerMargin  uint32
	HsyncLen     uint32
	VsyncLen     uint32
	Sync         uint32
	Vmode        uint32
	Rotate       uint32
	Colorspace   uint32
	Reserved     [4]uint32
}

// fbFixScreenInfo mirrors struct fb_fix_screeninfo.
type fbFixScreenInfo struct {
	ID           [16]byte
	SMemStart    uintptr
	SMemLen      uint32
	Type         uint32
	TypeAux      uint32
	Visual       uint32
	XPanstep     uint16
	YPanstep     uint16
	YWrapstep    uint16
	LineLength   uint32
	MMIOStart    uintptr
	MMIOLen      uint32
	Accel        uint32
	Capabilities uint16
	Reserved     [2]uint16
}

func ioctl(fd int, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}

// Framebuffer is the live framebuffer display handle. The surface
// size is the device's actual resolution, which takes precedence over
// the requested window geometry.
type Framebuffer struct {
	file   *os.File
	mem    []byte
	width  int
	height int
	stride int
	bpp    int
	closed bool
}

// Open maps the framebuffer device at path.
func Open(path string) (*Framebuffer, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("fbdev: open %s: %w", path, err)
	}

	var vinfo fbVarScreenInfo
	if err := ioctl(int(f.Fd()), fbioGetVScreenInfo, unsafe.Pointer(&vinfo)); err != nil {
		f.Close()
		return nil, fmt.Errorf("fbdev: FBIOGET_VSCREENINFO %s: %w", path, err)
	}
	var finfo fbFixScreenInfo
	if err := ioctl(int(f.Fd()), fbioGetFScreenInfo, unsafe.Pointer(&finfo)); err != nil {
		f.Close()
		return nil, fmt.Errorf("fbdev: FBIOGET_FSCREENINFO %s: %w", path, err)
	}

	switch vinfo.BitsPerPixel {
	case 16, 32:
	default:
		f.Close()
		return nil, fmt.Errorf("fbdev: %s: unsupported depth %d bpp", path, vinfo.BitsPerPixel)
	}

	mem, err := unix.Mmap(int(f.Fd()), 0, int(finfo.SMemLen), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("fbdev: mmap %s: %w", path, err)
	}

	return &Framebuffer{
		file:   f,
		mem:    mem,
		width:  int(vinfo.XRes),
		height: int(vinfo.YRes),
		stride: int(finfo.LineLength),
		bpp:    int(vinfo.BitsPerPixel),
	}, nil
}

// Size returns the device resolution in pixels.
func (fb *Framebuffer) Size() (int, int) { return fb.width, fb.height }

// Poll is a no-op: the framebuffer produces no events. Input comes
// from a layered evdev backend.
func (fb *Framebuffer) Poll(dst []event.Event) ([]event.Event, error) {
	if fb.closed {
		return dst, backend.ErrSurfaceLost
	}
	return dst, nil
}

// Present copies the dirty region of frame into the mapped buffer,
// converting from the toolkit's RGBA layout to the device layout
// (XRGB little-endian at 32 bpp, RGB565 at 16 bpp).
func (fb *Framebuffer) Present(frame *gg.Pixmap, dirty image.Rectangle) error {
	if fb.closed {
		return backend.ErrSurfaceLost
	}
	dirty = dirty.Intersect(image.Rect(0, 0, fb.width, fb.height))
	dirty = dirty.Intersect(image.Rect(0, 0, frame.Width(), frame.Height()))
	if dirty.Empty() {
		return nil
	}

	src := frame.Data()
	srcStride := frame.Width() * 4

	for y := dirty.Min.Y; y < dirty.Max.Y; y++ {
		srow := src[y*srcStride+dirty.Min.X*4:]
		switch fb.bpp {
		case 32:
			drow := fb.mem[y*fb.stride+dirty.Min.X*4:]
			for x := 0; x < dirty.Dx(); x++ {
				r, g, b := srow[x*4], srow[x*4+1], srow[x*4+2]
				drow[x*4] = b
				drow[x*4+1] = g
				drow[x*4+2] = r
				drow[x*4+3] = 0xff
			}
		case 16:
			drow := fb.mem[y*fb.stride+dirty.Min.X*2:]
			for x := 0; x < dirty.Dx(); x++ {
				r, g, b := srow[x*4], srow[x*4+1], srow[x*4+2]
				px := uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)
				drow[x*2] = byte(px)
				drow[x*2+1] = byte(px >> 8)
			}
		}
	}
	return nil
}

// Close unmaps the buffer and closes the device.
func (fb *Framebuffer) Close() error {
	if fb.closed {
		return nil
	}
	fb.closed = true
	err := unix.Munmap(fb.mem)
	if cerr := fb.file.Close(); err == nil {
		err = cerr
	}
	return err
}
