package slot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vburojevic/scw/internal/domain"
)

func payload(id string) *domain.Payload {
	return &domain.Payload{SessionID: id}
}

func TestEmptySlot(t *testing.T) {
	s := New()

	p, ok := s.Latest()
	require.False(t, ok)
	assert.Nil(t, p)
}

func TestOverwriteKeepsOnlyLatest(t *testing.T) {
	s := New()

	require.True(t, s.Publish(payload("a")))
	require.True(t, s.Publish(payload("b")))

	p, ok := s.Latest()
	require.True(t, ok)
	assert.Equal(t, "b", p.SessionID)

	// Idempotent until the next write.
	p2, ok := s.Latest()
	require.True(t, ok)
	assert.Equal(t, "b", p2.SessionID)
}

func TestDropAccounting(t *testing.T) {
	s := New()

	s.Publish(payload("a"))
	s.Publish(payload("b")) // a dropped
	s.Publish(payload("c")) // b dropped

	st := s.Stats()
	assert.EqualValues(t, 2, st.TotalDrops)
	assert.EqualValues(t, 2, st.ConsecutiveDrops)

	s.Latest()
	st = s.Stats()
	assert.EqualValues(t, 2, st.TotalDrops, "lifetime count is preserved")
	assert.Zero(t, st.ConsecutiveDrops, "streak resets on read")

	s.Publish(payload("d")) // c was read, no drop
	assert.EqualValues(t, 2, s.Stats().TotalDrops)
}

func TestUpdatedSignalsPublish(t *testing.T) {
	s := New()

	select {
	case <-s.Updated():
		t.Fatal("no publish yet")
	default:
	}

	s.Publish(payload("a"))

	select {
	case _, open := <-s.Updated():
		assert.True(t, open)
	case <-time.After(time.Second):
		t.Fatal("publish did not signal")
	}
}

func TestCloseUnblocksWaiter(t *testing.T) {
	s := New()

	done := make(chan struct{})
	go func() {
		<-s.Updated()
		close(done)
	}()

	s.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("waiter did not unblock on close")
	}
}

func TestCloseIsIdempotentAndFinal(t *testing.T) {
	s := New()
	s.Publish(payload("a"))
	s.Close()
	s.Close()

	assert.False(t, s.Publish(payload("b")), "publish after close is discarded")

	p, ok := s.Latest()
	require.True(t, ok)
	assert.Equal(t, "a", p.SessionID, "final value remains readable")
}
