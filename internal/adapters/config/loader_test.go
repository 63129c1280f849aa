package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ferry/internal/adapters/config"
	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/ferry/internal/core/ports/mocks"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, domain.DirPerm))
	require.NoError(t, os.WriteFile(filepath.Join(dir, domain.ConfigFileName), []byte(content), domain.PrivateFilePerm))
}

func newLoader(t *testing.T) (*config.Loader, *mocks.MockLogger) {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	return config.NewLoader(log), log
}

func TestLoad_Success(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `
version: "1"
digest: md5
tasks:
  mergeReleaseNativeLibs:
    cmd: ["./gradlew", "mergeReleaseNativeLibs"]
    workingDir: android
  mergeDebugNativeLibs:
    cmd: ["./gradlew", "mergeDebugNativeLibs"]
    dependsOn: ["mergeReleaseNativeLibs"]
    environment:
      JAVA_OPTS: "-Xmx2g"
artifacts:
  rust-binary:
    source: target/aarch64-linux-android/release/fungi
    destination: android/app/src/main/jniLibs/arm64-v8a/libfungi.so
    remediation: cargo ndk -P 24 -t arm64-v8a build --bin fungi --release
    consumers: [mergeReleaseNativeLibs, mergeDebugNativeLibs, mergeDebugNativeLibs]
`)
	loader, _ := newLoader(t)

	project, err := loader.Load(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Clean(tmpDir), project.Root)
	assert.Equal(t, domain.DigestMD5, project.Digest)

	require.Len(t, project.Tasks, 2)
	debug := project.Tasks[0]
	assert.Equal(t, "mergeDebugNativeLibs", debug.Name.String())
	assert.Equal(t, []string{"./gradlew", "mergeDebugNativeLibs"}, debug.Command)
	assert.Equal(t, []string{"mergeReleaseNativeLibs"}, domain.Strings(debug.Dependencies))
	assert.Equal(t, map[string]string{"JAVA_OPTS": "-Xmx2g"}, debug.Environment)
	assert.Equal(t, filepath.Clean(tmpDir), debug.WorkingDir.String())

	release := project.Tasks[1]
	assert.Equal(t, filepath.Join(tmpDir, "android"), release.WorkingDir.String())

	require.Len(t, project.Artifacts, 1)
	artifact := project.Artifacts[0]
	assert.Equal(t, "rust-binary", artifact.Name)
	assert.Equal(t, filepath.Join(tmpDir, "target/aarch64-linux-android/release/fungi"), artifact.Source)
	assert.Equal(t, filepath.Join(tmpDir, "android/app/src/main/jniLibs/arm64-v8a/libfungi.so"), artifact.Destination)
	assert.Equal(t, "cargo ndk -P 24 -t arm64-v8a build --bin fungi --release", artifact.Remediation)
	assert.Equal(t, []string{"mergeDebugNativeLibs", "mergeReleaseNativeLibs"}, artifact.Consumers)
}

func TestLoad_DefaultsToXXHash(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, "version: \"1\"\n")
	loader, _ := newLoader(t)

	project, err := loader.Load(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, domain.DigestXXHash, project.Digest)
	assert.Empty(t, project.Tasks)
	assert.Empty(t, project.Artifacts)
}

func TestLoad_DiscoversConfigInParent(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, "version: \"1\"\n")
	nested := filepath.Join(tmpDir, "android", "app")
	require.NoError(t, os.MkdirAll(nested, domain.DirPerm))
	loader, _ := newLoader(t)

	root, err := loader.DiscoverRoot(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean(tmpDir), root)

	project, err := loader.Load(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean(tmpDir), project.Root)
}

func TestLoad_ConfigNotFound(t *testing.T) {
	loader, _ := newLoader(t)

	_, err := loader.Load(t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConfigNotFound))
}

func TestLoad_ParseError(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, "tasks: [not, a, map\n")
	loader, _ := newLoader(t)

	_, err := loader.Load(tmpDir)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConfigParseFailed))
}

func TestLoad_VarsFileExpansion(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `
varsFile: key.properties
artifacts:
  lib:
    source: ${RUST_TARGET_DIR}/release/fungi
    destination: jniLibs/${ABI}/libfungi.so
    remediation: build for ${ABI} with ${CARGO_BIN}
`)
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "key.properties"),
		[]byte("RUST_TARGET_DIR=target/aarch64-linux-android\nABI=arm64-v8a\n"), domain.PrivateFilePerm))
	t.Setenv("CARGO_BIN", "cargo-ndk")
	t.Setenv("ABI", "x86_64")
	loader, _ := newLoader(t)

	project, err := loader.Load(tmpDir)
	require.NoError(t, err)

	require.Len(t, project.Artifacts, 1)
	artifact := project.Artifacts[0]
	assert.Equal(t, filepath.Join(tmpDir, "target/aarch64-linux-android/release/fungi"), artifact.Source)
	assert.Equal(t, filepath.Join(tmpDir, "jniLibs/arm64-v8a/libfungi.so"), artifact.Destination, "vars file wins over the environment")
	assert.Equal(t, "build for arm64-v8a with cargo-ndk", artifact.Remediation)
}

func TestLoad_MissingVarsFileIsEmpty(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, `
varsFile: key.properties
tasks:
  echo:
    cmd: ["echo", "${FERRY_TEST_UNSET_VAR}"]
`)
	loader, _ := newLoader(t)

	project, err := loader.Load(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, []string{"echo", ""}, project.Tasks[0].Command)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
		meta    map[string]any
	}{
		{
			name:    "reserved task name",
			content: "tasks:\n  all:\n    cmd: [\"true\"]\n",
			wantErr: domain.ErrReservedTaskName,
			meta:    map[string]any{"task_name": "all"},
		},
		{
			name:    "invalid task name",
			content: "tasks:\n  \"bad name\":\n    cmd: [\"true\"]\n",
			wantErr: domain.ErrInvalidTaskName,
			meta:    map[string]any{"task_name": "bad name"},
		},
		{
			name:    "missing dependency",
			content: "tasks:\n  build:\n    dependsOn: [ghost]\n",
			wantErr: domain.ErrMissingDependency,
			meta:    map[string]any{"task": "build", "missing_dependency": "ghost"},
		},
		{
			name:    "artifact without destination",
			content: "artifacts:\n  lib:\n    source: a\n",
			wantErr: domain.ErrInvalidArtifact,
			meta:    map[string]any{"artifact": "lib"},
		},
		{
			name:    "unknown digest",
			content: "digest: sha1\n",
			wantErr: domain.ErrUnknownDigestAlgorithm,
			meta:    map[string]any{"digest": "sha1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			writeConfig(t, tmpDir, tt.content)
			loader, _ := newLoader(t)

			_, err := loader.Load(tmpDir)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)

			zErr, ok := err.(*zerr.Error)
			require.True(t, ok, "expected *zerr.Error, got %T", err)
			meta := zErr.Metadata()
			for k, v := range tt.meta {
				assert.Equal(t, v, meta[k], "metadata %s", k)
			}
		})
	}
}

func TestLoad_WarnsOnUnknownVersion(t *testing.T) {
	tmpDir := t.TempDir()
	writeConfig(t, tmpDir, "version: \"2\"\n")
	loader, log := newLoader(t)
	log.EXPECT().Warn(gomock.Any()).Times(1)

	_, err := loader.Load(tmpDir)
	require.NoError(t, err)
}
