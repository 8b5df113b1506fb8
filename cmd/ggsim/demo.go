package main

import (
	"fmt"
	"image"
	"math"
	"os"
	"time"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"

	"github.com/gogpu/ggsim/event"
)

const (
	demoButtons  = 10
	buttonWidth  = 180.0
	buttonHeight = 200.0
	buttonPitch  = 196.0
)

// demoScene is the screen the simulator drives: a title, status
// labels, and a horizontally scrolling row of buttons that snaps to
// the button pitch when a drag ends. It only reports a dirty frame
// while something is moving, so an idle simulator presents nothing.
type demoScene struct {
	dc      *gg.Context
	frame   *gg.Pixmap
	face    text.Face
	toolkit string
	width   int
	height  int

	elapsed  float64
	scroll   float64
	target   float64
	dragging bool
	lastX    int
	pressed  int
	dirty    bool
}

func newDemoScene() *demoScene {
	return &demoScene{face: loadFont(), toolkit: toolkitVersion(), pressed: -1, dirty: true}
}

func (d *demoScene) Advance(dt time.Duration) {
	d.elapsed += dt.Seconds()
	if d.dragging {
		return
	}
	diff := d.target - d.scroll
	if math.Abs(diff) < 0.5 {
		if d.scroll != d.target {
			d.scroll = d.target
			d.dirty = true
		}
		return
	}
	d.scroll += diff * math.Min(1, dt.Seconds()*10)
	d.dirty = true
}

func (d *demoScene) Input(ev event.Event) {
	switch ev.Kind {
	case event.PointerDown:
		d.dragging = true
		d.lastX = ev.X
		d.pressed = d.buttonAt(ev.X, ev.Y)
		d.dirty = true
	case event.PointerMove:
		if !d.dragging {
			return
		}
		d.scroll -= float64(ev.X - d.lastX)
		d.lastX = ev.X
		d.pressed = -1
		d.dirty = true
	case event.PointerUp:
		d.dragging = false
		d.pressed = -1
		d.snap()
		d.dirty = true
	}
}

// snap rounds the scroll position to the nearest button, clamped to
// the row.
func (d *demoScene) snap() {
	end := buttonPitch * float64(demoButtons-1)
	t := math.Round(d.scroll/buttonPitch) * buttonPitch
	d.target = math.Max(0, math.Min(t, end))
}

// buttonAt returns the index of the button under (x, y), or -1.
func (d *demoScene) buttonAt(x, y int) int {
	if d.height == 0 {
		return -1
	}
	top := float64(d.height)/2 - buttonHeight/2
	if float64(y) < top || float64(y) > top+buttonHeight {
		return -1
	}
	fx := float64(x) + d.scroll - 40
	if fx < 0 {
		return -1
	}
	i := int(fx / buttonPitch)
	if i >= demoButtons || fx-float64(i)*buttonPitch > buttonWidth {
		return -1
	}
	return i
}

func (d *demoScene) Render(frame *gg.Pixmap) (image.Rectangle, bool) {
	if !d.dirty {
		return image.Rectangle{}, false
	}
	d.dirty = false

	if d.dc == nil || d.frame != frame {
		d.frame = frame
		d.width = frame.Width()
		d.height = frame.Height()
		d.dc = gg.NewContext(d.width, d.height, gg.WithPixmap(frame))
	}

	dc := d.dc
	w, h := float64(d.width), float64(d.height)

	dc.ClearWithColor(gg.RGBA{R: 0x12 / 255.0, G: 0x12 / 255.0, B: 0x12 / 255.0, A: 1})

	// Button row, centered vertically, shifted by the scroll offset.
	top := h/2 - buttonHeight/2
	for i := 0; i < demoButtons; i++ {
		x := 40 + float64(i)*buttonPitch - d.scroll
		if x+buttonWidth < 0 || x > w {
			continue
		}

		if i == d.pressed {
			dc.SetHexColor("#3A3A3A")
		} else {
			dc.SetHexColor("#2A2A2A")
		}
		dc.DrawRoundedRectangle(x, top, buttonWidth, buttonHeight, 12)
		dc.Fill()

		hue := float64(i) / demoButtons
		r, g, b := hsvToRGB(hue, 0.7, 0.95)
		dc.SetRGBA(r, g, b, 1)
		dc.DrawCircle(x+buttonWidth/2, top+70, 40)
		dc.Fill()

		if d.face != nil {
			dc.SetFont(d.face)
			dc.SetRGB(1, 1, 1)
			dc.DrawStringAnchored(fmt.Sprintf("Item %d", i), x+buttonWidth/2, top+buttonHeight-30, 0.5, 0)
		}
	}

	if d.face != nil {
		dc.SetFont(d.face)
		dc.SetRGB(1, 1, 1)
		dc.DrawString("ggsim demo", 40, 50)
		dc.SetRGBA(0.7, 0.7, 0.7, 1)
		dc.DrawString(fmt.Sprintf("Config: %dx%d, 32bpp", d.width, d.height), 10, h-30)
		dc.DrawString(fmt.Sprintf("Toolkit: gg %s", d.toolkit), 10, h-10)
	}

	return image.Rect(0, 0, d.width, d.height), true
}

// loadFont finds a system TTF font for the labels. The demo degrades
// to shapes only when none is found.
func loadFont() text.Face {
	candidates := []string{
		"C:\\Windows\\Fonts\\segoeui.ttf",
		"/System/Library/Fonts/Supplemental/Arial.ttf",
		"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		"/usr/share/fonts/TTF/DejaVuSans.ttf",
		"/usr/share/fonts/liberation/LiberationSans-Regular.ttf",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		source, err := text.NewFontSourceFromFile(path)
		if err != nil {
			continue
		}
		return source.Face(16)
	}
	return nil
}

func hsvToRGB(h, s, v float64) (r, g, b float64) {
	if s == 0 {
		return v, v, v
	}
	h *= 6
	i := math.Floor(h)
	f := h - i
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))
	switch int(i) % 6 {
	case 0:
		return v, t, p
	case 1:
		return q, v, p
	case 2:
		return p, v, t
	case 3:
		return p, q, v
	case 4:
		return t, p, v
	default:
		return v, p, q
	}
}
