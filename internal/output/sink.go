package output

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vburojevic/scw/internal/domain"
)

// FrameSink persists emitted frames under a directory, one file per
// payload, named by sequence and relative time so a directory listing
// reads as a timeline.
type FrameSink struct {
	mu  sync.Mutex
	dir string
	seq int
}

// NewFrameSink creates the directory if needed.
func NewFrameSink(dir string) (*FrameSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("frame sink: %w", err)
	}
	return &FrameSink{dir: dir}, nil
}

// Save writes the payload's image bytes and returns the file path.
func (s *FrameSink) Save(p *domain.Payload) (string, error) {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	name := fmt.Sprintf("%06d_%08.3fs.jpg", seq, p.RelativeTime)
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, p.Data, 0o644); err != nil {
		return "", fmt.Errorf("frame sink: %w", err)
	}
	return path, nil
}

// Count returns the number of frames saved so far.
func (s *FrameSink) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}
