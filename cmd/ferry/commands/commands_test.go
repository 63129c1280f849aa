package commands_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ferry/cmd/ferry/commands"
	"go.trai.ch/ferry/internal/app"
	"go.trai.ch/ferry/internal/build"
)

type mockApp struct {
	runFunc   func(ctx context.Context, targetNames []string, opts app.RunOptions) error
	syncFunc  func(ctx context.Context, artifactNames []string) error
	watchFunc func(ctx context.Context, artifactNames []string, opts app.WatchOptions) error
	planFunc  func(ctx context.Context, targetNames []string, w io.Writer) error
}

func (m *mockApp) Run(ctx context.Context, targetNames []string, opts app.RunOptions) error {
	if m.runFunc != nil {
		return m.runFunc(ctx, targetNames, opts)
	}
	return nil
}

func (m *mockApp) Sync(ctx context.Context, artifactNames []string) error {
	if m.syncFunc != nil {
		return m.syncFunc(ctx, artifactNames)
	}
	return nil
}

func (m *mockApp) Watch(ctx context.Context, artifactNames []string, opts app.WatchOptions) error {
	if m.watchFunc != nil {
		return m.watchFunc(ctx, artifactNames, opts)
	}
	return nil
}

func (m *mockApp) Plan(ctx context.Context, targetNames []string, w io.Writer) error {
	if m.planFunc != nil {
		return m.planFunc(ctx, targetNames, w)
	}
	return nil
}

func TestCommands_Run(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		var capturedOpts app.RunOptions
		var capturedTargets []string

		mock := &mockApp{
			runFunc: func(_ context.Context, targetNames []string, opts app.RunOptions) error {
				capturedOpts = opts
				capturedTargets = targetNames
				return nil
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"run", "mergeDebugNativeLibs", "mergeReleaseNativeLibs", "-j", "3"})

		require.NoError(t, cli.Execute(context.Background()))
		assert.Equal(t, 3, capturedOpts.Parallelism)
		assert.Equal(t, []string{"mergeDebugNativeLibs", "mergeReleaseNativeLibs"}, capturedTargets)
	})

	t.Run("returns error on run failure", func(t *testing.T) {
		mock := &mockApp{
			runFunc: func(_ context.Context, _ []string, _ app.RunOptions) error {
				return errors.New("simulated error")
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"run", "target"})
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))

		err := cli.Execute(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
	})

	t.Run("shows usage when no targets provided", func(t *testing.T) {
		mock := &mockApp{
			runFunc: func(_ context.Context, _ []string, _ app.RunOptions) error {
				panic("should not be called")
			},
		}

		cli := commands.New(mock)
		buf := new(bytes.Buffer)
		cli.SetOutput(buf, buf)
		cli.SetArgs([]string{"run"})

		require.NoError(t, cli.Execute(context.Background()))
		assert.Contains(t, buf.String(), "Usage:")
	})
}

func TestCommands_Sync(t *testing.T) {
	var captured []string
	called := false
	mock := &mockApp{
		syncFunc: func(_ context.Context, artifactNames []string) error {
			called = true
			captured = artifactNames
			return nil
		},
	}

	cli := commands.New(mock)
	cli.SetArgs([]string{"sync", "rust-binary"})

	require.NoError(t, cli.Execute(context.Background()))
	assert.True(t, called)
	assert.Equal(t, []string{"rust-binary"}, captured)
}

func TestCommands_Watch(t *testing.T) {
	t.Run("default debounce", func(t *testing.T) {
		var opts app.WatchOptions
		mock := &mockApp{
			watchFunc: func(_ context.Context, _ []string, o app.WatchOptions) error {
				opts = o
				return nil
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"watch"})

		require.NoError(t, cli.Execute(context.Background()))
		assert.Equal(t, app.DefaultWatchDebounce, opts.Debounce)
	})

	t.Run("custom debounce", func(t *testing.T) {
		var opts app.WatchOptions
		var names []string
		mock := &mockApp{
			watchFunc: func(_ context.Context, artifactNames []string, o app.WatchOptions) error {
				opts = o
				names = artifactNames
				return nil
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"watch", "rust-binary", "--debounce", "2s"})

		require.NoError(t, cli.Execute(context.Background()))
		assert.Equal(t, 2*time.Second, opts.Debounce)
		assert.Equal(t, []string{"rust-binary"}, names)
	})
}

func TestCommands_Plan(t *testing.T) {
	t.Run("writes to command output", func(t *testing.T) {
		mock := &mockApp{
			planFunc: func(_ context.Context, targetNames []string, w io.Writer) error {
				_, err := io.WriteString(w, "plan for "+targetNames[0]+"\n")
				return err
			},
		}

		cli := commands.New(mock)
		buf := new(bytes.Buffer)
		cli.SetOutput(buf, new(bytes.Buffer))
		cli.SetArgs([]string{"plan", "assembleDebug"})

		require.NoError(t, cli.Execute(context.Background()))
		assert.Equal(t, "plan for assembleDebug\n", buf.String())
	})

	t.Run("requires a target", func(t *testing.T) {
		cli := commands.New(&mockApp{})
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))
		cli.SetArgs([]string{"plan"})

		require.Error(t, cli.Execute(context.Background()))
	})
}

func TestCommands_Version(t *testing.T) {
	mock := &mockApp{}
	cli := commands.New(mock)

	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs([]string{"version"})

	require.NoError(t, cli.Execute(context.Background()))
	assert.Contains(t, buf.String(), "ferry version "+build.Version)
}

func TestCommands_VersionShort(t *testing.T) {
	cli := commands.New(&mockApp{})

	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs([]string{"version", "--short"})

	require.NoError(t, cli.Execute(context.Background()))
	assert.Equal(t, build.Version+"\n", buf.String())
}

func TestCommands_VersionFlag(t *testing.T) {
	cli := commands.New(&mockApp{})

	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs([]string{"--version"})

	require.NoError(t, cli.Execute(context.Background()))
	assert.Contains(t, buf.String(), "ferry version "+build.Version)
}
