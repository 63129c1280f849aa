package watcher_test

import (
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ferry/internal/adapters/watcher"
)

type recorder struct {
	mu    sync.Mutex
	calls [][]string
}

func (r *recorder) record(paths []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, paths)
}

func (r *recorder) snapshot() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]string(nil), r.calls...)
}

func TestDebouncer_CoalescesBurst(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rec := &recorder{}
		d := watcher.NewDebouncer(100*time.Millisecond, rec.record)

		d.Add("/src/libfungi.so")
		d.Add("/src/b")
		d.Add("/src/libfungi.so")

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		require.Len(t, rec.snapshot(), 1)
		assert.Equal(t, []string{"/src/b", "/src/libfungi.so"}, rec.snapshot()[0])
	})
}

func TestDebouncer_TimerResets(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rec := &recorder{}
		d := watcher.NewDebouncer(100*time.Millisecond, rec.record)

		d.Add("/src/a")
		time.Sleep(60 * time.Millisecond)
		d.Add("/src/a")
		time.Sleep(60 * time.Millisecond)
		synctest.Wait()
		assert.Empty(t, rec.snapshot(), "quiet period restarts on every Add")

		time.Sleep(60 * time.Millisecond)
		synctest.Wait()
		assert.Len(t, rec.snapshot(), 1)
	})
}

func TestDebouncer_SeparateBursts(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rec := &recorder{}
		d := watcher.NewDebouncer(100*time.Millisecond, rec.record)

		d.Add("/src/a")
		time.Sleep(150 * time.Millisecond)
		d.Add("/src/a")
		time.Sleep(150 * time.Millisecond)
		synctest.Wait()

		assert.Equal(t, [][]string{{"/src/a"}, {"/src/a"}}, rec.snapshot())
	})
}

func TestDebouncer_Flush(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rec := &recorder{}
		d := watcher.NewDebouncer(100*time.Millisecond, rec.record)

		d.Flush()
		assert.Empty(t, rec.snapshot(), "nothing pending")

		d.Add("/src/a")
		d.Flush()
		assert.Equal(t, [][]string{{"/src/a"}}, rec.snapshot())

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()
		assert.Len(t, rec.snapshot(), 1, "flushed paths are not reported again")
	})
}

func TestDebouncer_Stop(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		rec := &recorder{}
		d := watcher.NewDebouncer(100*time.Millisecond, rec.record)

		d.Add("/src/a")
		d.Stop()

		time.Sleep(150 * time.Millisecond)
		synctest.Wait()
		assert.Empty(t, rec.snapshot())
	})
}

func TestDebouncer_NilCallback(t *testing.T) {
	synctest.Test(t, func(_ *testing.T) {
		d := watcher.NewDebouncer(10*time.Millisecond, nil)
		d.Add("/src/a")
		time.Sleep(20 * time.Millisecond)
		synctest.Wait()
	})
}
