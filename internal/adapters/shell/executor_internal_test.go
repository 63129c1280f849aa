package shell

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveEnvironment(t *testing.T) {
	tests := []struct {
		name     string
		sysEnv   []string
		taskEnv  map[string]string
		expected []string
	}{
		{
			name:     "System Only",
			sysEnv:   []string{"USER=test", "PATH=/bin", "ANDROID_HOME=/opt/android"},
			expected: []string{"ANDROID_HOME=/opt/android", "PATH=/bin", "USER=test"},
		},
		{
			name:     "Task Override",
			sysEnv:   []string{"USER=test", "PATH=/bin"},
			taskEnv:  map[string]string{"USER": "ferry", "FOO": "bar"},
			expected: []string{"FOO=bar", "PATH=/bin", "USER=ferry"},
		},
		{
			name:     "Malformed Entries Dropped",
			sysEnv:   []string{"NOEQUALS", "A=1=2"},
			expected: []string{"A=1=2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, resolveEnvironment(tt.sysEnv, tt.taskEnv))
		})
	}
}

func TestLookPath(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "tool")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "data"), []byte("x"), 0o600))

	got, err := lookPath("tool", []string{"PATH=/nonexistent" + string(os.PathListSeparator) + dir})
	require.NoError(t, err)
	assert.Equal(t, bin, got)

	_, err = lookPath("data", []string{"PATH=" + dir})
	assert.Error(t, err, "non-executable files are skipped")

	_, err = lookPath("tool", []string{"HOME=/root"})
	assert.Error(t, err)
}
