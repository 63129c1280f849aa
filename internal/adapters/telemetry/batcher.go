package telemetry

import (
	"bytes"
	"errors"
	"sync"
	"time"
)

const (
	// DefaultSizeLimit is the buffered byte count that forces a flush.
	DefaultSizeLimit = 4096
	// DefaultTimeLimit is how long output may sit in the buffer before it is flushed.
	DefaultTimeLimit = 50 * time.Millisecond
)

// ErrBatcherClosed is returned by Write after Close.
var ErrBatcherClosed = errors.New("output batcher is closed")

// OutputBatcher coalesces task output into chunks so that a chatty command
// does not produce one render call per write. It is safe for concurrent use.
//
// A chunk is flushed when it reaches the size limit, when the time limit has
// elapsed since the first unflushed write, or on Close.
type OutputBatcher struct {
	sizeLimit int
	timeLimit time.Duration
	onFlush   func([]byte)

	mu     sync.Mutex
	buffer bytes.Buffer
	timer  *time.Timer
	closed bool
}

// NewOutputBatcher returns an OutputBatcher delivering chunks to onFlush.
// Non-positive limits fall back to the defaults.
func NewOutputBatcher(sizeLimit int, timeLimit time.Duration, onFlush func([]byte)) *OutputBatcher {
	if sizeLimit <= 0 {
		sizeLimit = DefaultSizeLimit
	}
	if timeLimit <= 0 {
		timeLimit = DefaultTimeLimit
	}
	return &OutputBatcher{
		sizeLimit: sizeLimit,
		timeLimit: timeLimit,
		onFlush:   onFlush,
	}
}

// Write buffers p.
func (b *OutputBatcher) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, ErrBatcherClosed
	}

	n, _ := b.buffer.Write(p)

	if b.buffer.Len() >= b.sizeLimit {
		b.flushLocked()
		return n, nil
	}

	if b.timer == nil {
		b.timer = time.AfterFunc(b.timeLimit, b.Flush)
	}
	return n, nil
}

// Flush delivers any buffered output immediately.
func (b *OutputBatcher) Flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.flushLocked()
}

// Close flushes the remaining output. Further writes fail.
func (b *OutputBatcher) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	b.flushLocked()
	return nil
}

// flushLocked must be called with mu held. onFlush runs under the lock so
// chunks are delivered in write order.
func (b *OutputBatcher) flushLocked() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	if b.buffer.Len() == 0 {
		return
	}

	data := bytes.Clone(b.buffer.Bytes())
	b.buffer.Reset()

	if b.onFlush != nil {
		b.onFlush(data)
	}
}
