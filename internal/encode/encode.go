// Package encode turns captured frames into transportable bytes.
package encode

import (
	"bytes"
	"fmt"
	"image/jpeg"

	"github.com/vburojevic/scw/internal/domain"
)

// Encoder compresses a frame. Deterministic for identical inputs and
// quality.
type Encoder interface {
	Encode(frame *domain.Frame, quality int) ([]byte, error)
}

// JPEG encodes frames with the standard JPEG codec. Quality follows the
// usual 1-100 scale.
type JPEG struct{}

// Encode implements Encoder.
func (JPEG) Encode(frame *domain.Frame, quality int) ([]byte, error) {
	if !frame.Valid() {
		return nil, fmt.Errorf("encode: empty frame")
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, frame.Image, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return buf.Bytes(), nil
}
