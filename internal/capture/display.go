package capture

import (
	"context"
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/kbinani/screenshot"
	xdraw "golang.org/x/image/draw"

	"github.com/vburojevic/scw/internal/domain"
)

// Display target references look like "display:0". A bare index is also
// accepted.
const displayPrefix = "display:"

// ParseDisplayRef extracts the display index from a target reference.
func ParseDisplayRef(target string) (int, error) {
	ref := strings.TrimPrefix(target, displayPrefix)
	idx, err := strconv.Atoi(ref)
	if err != nil {
		return 0, fmt.Errorf("invalid display reference %q: %w", target, err)
	}
	return idx, nil
}

// DisplayLocator resolves "display:N" references against the attached
// displays. A display that has been unplugged resolves to target lost.
type DisplayLocator struct{}

// Resolve implements TargetLocator.
func (DisplayLocator) Resolve(_ context.Context, target string) (domain.TargetInfo, error) {
	idx, err := ParseDisplayRef(target)
	if err != nil {
		return domain.TargetInfo{}, err
	}
	if idx < 0 || idx >= screenshot.NumActiveDisplays() {
		return domain.TargetInfo{}, fmt.Errorf("display %d: %w", idx, domain.ErrTargetLost)
	}
	bounds := screenshot.GetDisplayBounds(idx)
	return domain.NewTargetInfo(fmt.Sprintf("Display %d", idx), bounds), nil
}

// DisplaySource captures whole displays.
type DisplaySource struct{}

// Capture implements FrameSource for "display:N" targets.
func (DisplaySource) Capture(_ context.Context, target string, maxWidth int) (*domain.Frame, error) {
	idx, err := ParseDisplayRef(target)
	if err != nil {
		return nil, err
	}
	if idx < 0 || idx >= screenshot.NumActiveDisplays() {
		return nil, fmt.Errorf("display %d: %w", idx, domain.ErrTargetLost)
	}

	img, err := screenshot.CaptureRect(screenshot.GetDisplayBounds(idx))
	if err != nil {
		return nil, fmt.Errorf("capture display %d: %w", idx, err)
	}
	return domain.NewFrame(Downscale(img, maxWidth)), nil
}

// Downscale resizes img so its width is at most maxWidth, preserving
// aspect ratio. Uses approximate bilinear resampling: at snapshot cadence
// speed matters and fidelity does not.
func Downscale(img *image.RGBA, maxWidth int) *image.RGBA {
	b := img.Bounds()
	if maxWidth <= 0 || b.Dx() <= maxWidth {
		return img
	}
	h := b.Dy() * maxWidth / b.Dx()
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

// ListDisplays enumerates the attached displays.
func ListDisplays() []domain.TargetInfo {
	n := screenshot.NumActiveDisplays()
	out := make([]domain.TargetInfo, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.NewTargetInfo(fmt.Sprintf("Display %d", i), screenshot.GetDisplayBounds(i)))
	}
	return out
}
