package runner

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestProgress_RendersPhase(t *testing.T) {
	var buf syncBuffer
	p := NewProgress(&buf)
	p.interval = 5 * time.Millisecond

	p.SetPhase("requesting")
	p.Start()
	assert.Eventually(t, func() bool {
		return strings.Contains(buf.String(), "requesting")
	}, time.Second, time.Millisecond)
	p.Stop()
}

func TestProgress_StopIsIdempotent(t *testing.T) {
	p := NewProgress(&syncBuffer{})
	p.Start()
	p.Stop()
	p.Stop()
}

func TestProgress_StopWithoutStart(t *testing.T) {
	p := NewProgress(&syncBuffer{})
	p.Stop()
}

// syncBuffer makes bytes.Buffer safe for the render goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
