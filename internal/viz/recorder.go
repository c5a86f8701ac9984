package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"os"
)

// Recorder collects canvas frames for an animated GIF.
type Recorder struct {
	DotSize int
	frames  []*image.Paletted
}

func NewRecorder() *Recorder {
	return &Recorder{DotSize: 3}
}

func (r *Recorder) Frames() int { return len(r.frames) }

// Capture rasterises every lit dot of c as a DotSize square.
func (r *Recorder) Capture(c *Canvas) {
	size := max(1, r.DotSize)
	w, h := c.DotWidth(), c.DotHeight()
	img := image.NewPaletted(image.Rect(0, 0, w*size, h*size), color.Palette{color.Black, color.White})
	for y := range h {
		for x := range w {
			if !c.IsSet(x, y) {
				continue
			}
			for py := range size {
				for px := range size {
					img.SetColorIndex(x*size+px, y*size+py, 1)
				}
			}
		}
	}
	r.frames = append(r.frames, img)
}

// Save writes the captured frames to path and clears the recorder.
func (r *Recorder) Save(path string) error {
	if len(r.frames) == 0 {
		return fmt.Errorf("no frames recorded")
	}
	anim := gif.GIF{}
	for _, frame := range r.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 2)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := gif.EncodeAll(f, &anim); err != nil {
		return err
	}
	r.frames = r.frames[:0]
	return f.Close()
}
