package output

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vburojevic/scw/internal/domain"
)

func TestFrameSinkSavesSequencedFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "frames")
	sink, err := NewFrameSink(dir)
	require.NoError(t, err)

	start := time.Unix(1000, 0)
	p1 := domain.NewPayload("s", domain.EventFrame, start.Add(500*time.Millisecond), start, domain.TargetInfo{}, []byte("aaa"))
	p2 := domain.NewPayload("s", domain.EventChange, start.Add(time.Second), start, domain.TargetInfo{}, []byte("bbb"))

	path1, err := sink.Save(p1)
	require.NoError(t, err)
	path2, err := sink.Save(p2)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "000001_0000.500s.jpg"), path1)
	assert.Equal(t, filepath.Join(dir, "000002_0001.000s.jpg"), path2)
	assert.Equal(t, 2, sink.Count())

	data, err := os.ReadFile(path2)
	require.NoError(t, err)
	assert.Equal(t, []byte("bbb"), data)
}
