package encode

import (
	"bytes"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vburojevic/scw/internal/domain"
)

func TestJPEGEncode(t *testing.T) {
	frame := domain.NewFrame(image.NewRGBA(image.Rect(0, 0, 64, 48)))

	data, err := JPEG{}.Encode(frame, 65)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.True(t, bytes.HasPrefix(data, []byte{0xff, 0xd8}), "JPEG SOI marker")

	// Deterministic for identical inputs and quality.
	again, err := JPEG{}.Encode(frame, 65)
	require.NoError(t, err)
	assert.Equal(t, data, again)
}

func TestJPEGRejectsEmptyFrame(t *testing.T) {
	_, err := JPEG{}.Encode(&domain.Frame{}, 65)
	require.Error(t, err)
}
