package scheduler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ferry/internal/engine/scheduler"
)

func TestBuildPlan(t *testing.T) {
	g := createGraphHelper(t, map[string][]string{
		"assembleDebug":          {"mergeDebugNativeLibs"},
		"mergeDebugNativeLibs":   {"syncRustBinary", "preBuild"},
		"mergeReleaseNativeLibs": {"syncRustBinary"},
	})

	plan, err := scheduler.BuildPlan(g, []string{"assembleDebug"})
	require.NoError(t, err)

	assert.Equal(t, []string{"preBuild", "syncRustBinary", "mergeDebugNativeLibs", "assembleDebug"}, plan.Tasks)
	assert.Equal(t, []string{"preBuild", "syncRustBinary"}, plan.Dependencies["mergeDebugNativeLibs"])
	assert.NotContains(t, plan.Tasks, "mergeReleaseNativeLibs")
	assert.Equal(t, []string{"assembleDebug"}, plan.Targets)
}

func TestBuildPlan_All(t *testing.T) {
	g := createGraphHelper(t, map[string][]string{
		"b": {"a"},
		"c": {},
	})

	plan, err := scheduler.BuildPlan(g, []string{"all"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, plan.Tasks)
}
