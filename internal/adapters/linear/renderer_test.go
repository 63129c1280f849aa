package linear_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ferry/internal/adapters/linear"
)

func newRenderer(t *testing.T) (*linear.Renderer, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	var stdout, stderr bytes.Buffer
	return linear.NewRenderer(&stdout, &stderr), &stdout, &stderr
}

func TestRenderer_TaskLifecycle(t *testing.T) {
	r, stdout, stderr := newRenderer(t)
	require.NoError(t, r.Start(context.Background()))

	r.OnPlanEmit([]string{"syncRustBinary", "mergeDebugNativeLibs"},
		map[string][]string{"mergeDebugNativeLibs": {"syncRustBinary"}},
		[]string{"mergeDebugNativeLibs"})

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	r.OnTaskStart("span1", "", "syncRustBinary", start)
	r.OnTaskLog("span1", []byte("created rust-binary\n"))
	r.OnTaskComplete("span1", start.Add(120*time.Millisecond), nil)

	require.NoError(t, r.Stop())
	require.NoError(t, r.Wait())

	assert.Equal(t, "[syncRustBinary] created rust-binary\n", stdout.String())
	assert.Equal(t,
		"Planning to run 2 task(s) for target(s): mergeDebugNativeLibs\n"+
			"[syncRustBinary] Starting...\n"+
			"[syncRustBinary] ✓ Completed in 120ms\n",
		stderr.String())
}

func TestRenderer_PartialLines(t *testing.T) {
	r, stdout, _ := newRenderer(t)
	start := time.Now()
	r.OnTaskStart("span1", "", "task1", start)

	r.OnTaskLog("span1", []byte("par"))
	assert.Empty(t, stdout.String())

	r.OnTaskLog("span1", []byte("tial\nnext\r\nta"))
	assert.Equal(t, "[task1] partial\n[task1] next\n", stdout.String())

	r.OnTaskComplete("span1", start, nil)
	assert.Equal(t, "[task1] partial\n[task1] next\n[task1] ta\n", stdout.String())
}

func TestRenderer_Failure(t *testing.T) {
	r, _, stderr := newRenderer(t)
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	r.OnTaskStart("span1", "", "mergeDebugNativeLibs", start)
	r.OnTaskComplete("span1", start.Add(time.Second), errors.New("command failed"))

	assert.Contains(t, stderr.String(), "[mergeDebugNativeLibs] ✗ Failed after 1s: command failed\n")
}

func TestRenderer_InterleavedTasks(t *testing.T) {
	r, stdout, _ := newRenderer(t)
	start := time.Now()

	r.OnTaskStart("a", "", "alpha", start)
	r.OnTaskStart("b", "", "beta", start)
	r.OnTaskLog("a", []byte("one"))
	r.OnTaskLog("b", []byte("two\n"))
	r.OnTaskLog("a", []byte("\n"))

	assert.Equal(t, "[beta] two\n[alpha] one\n", stdout.String())
}

func TestRenderer_UnknownSpanIgnored(t *testing.T) {
	r, stdout, stderr := newRenderer(t)

	r.OnTaskLog("ghost", []byte("data\n"))
	r.OnTaskComplete("ghost", time.Now(), nil)

	assert.Empty(t, stdout.String())
	assert.Empty(t, stderr.String())
}

func TestRenderer_StopFlushesUnfinishedTasks(t *testing.T) {
	r, stdout, _ := newRenderer(t)
	r.OnTaskStart("span1", "", "watch", time.Now())
	r.OnTaskLog("span1", []byte("no newline"))

	require.NoError(t, r.Stop())
	assert.Equal(t, "[watch] no newline\n", stdout.String())
}
