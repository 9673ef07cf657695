package domain

import "image"

// Frame is one decoded capture, owned by the scheduler iteration that
// produced it. It is never shared across sessions and never retained
// past detector analysis and encoding.
type Frame struct {
	Image  *image.RGBA
	Width  int
	Height int
}

// NewFrame wraps a decoded image buffer.
func NewFrame(img *image.RGBA) *Frame {
	b := img.Bounds()
	return &Frame{
		Image:  img,
		Width:  b.Dx(),
		Height: b.Dy(),
	}
}

// Valid reports whether the frame holds a non-empty pixel buffer.
// Zero-size frames are rejected before they reach the change detector.
func (f *Frame) Valid() bool {
	return f != nil && f.Image != nil && f.Width > 0 && f.Height > 0
}
