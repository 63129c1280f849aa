package fs_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/ferry/internal/adapters/fs"
	"go.trai.ch/ferry/internal/core/domain"
)

func TestDigester_KnownDigests(t *testing.T) {
	empty := filepath.Join(t.TempDir(), "empty")
	require.NoError(t, os.WriteFile(empty, nil, domain.PrivateFilePerm))

	tests := []struct {
		algorithm domain.DigestAlgorithm
		expected  string
	}{
		{domain.DigestXXHash, "ef46db3751d8e999"},
		{domain.DigestMD5, "d41d8cd98f00b204e9800998ecf8427e"},
		{domain.DigestBlake3, "af1349b9f5f9a1a6a0404dea36dcc9499bcb25c9adc112b7cc9a93cae41f3262"},
	}

	for _, tt := range tests {
		t.Run(string(tt.algorithm), func(t *testing.T) {
			d, err := fs.NewDigester(tt.algorithm)
			require.NoError(t, err)
			assert.Equal(t, tt.algorithm, d.Algorithm())

			digest, err := d.Digest(empty)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, digest.String())
			assert.Equal(t, tt.algorithm, digest.Algorithm)
		})
	}
}

func TestDigester_DistinguishesContent(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a")
	b := filepath.Join(dir, "b")
	require.NoError(t, os.WriteFile(a, []byte("libfungi v1"), domain.PrivateFilePerm))
	require.NoError(t, os.WriteFile(b, []byte("libfungi v2"), domain.PrivateFilePerm))

	d, err := fs.NewDigester(domain.DigestXXHash)
	require.NoError(t, err)

	da, err := d.Digest(a)
	require.NoError(t, err)
	db, err := d.Digest(b)
	require.NoError(t, err)
	assert.False(t, da.Equal(db))

	again, err := d.Digest(a)
	require.NoError(t, err)
	assert.True(t, da.Equal(again))
}

func TestDigester_NewHashMatchesDigest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file")
	content := []byte("streamed content")
	require.NoError(t, os.WriteFile(path, content, domain.PrivateFilePerm))

	d, err := fs.NewDigester(domain.DigestBlake3)
	require.NoError(t, err)

	h := d.NewHash()
	_, _ = h.Write(content)

	digest, err := d.Digest(path)
	require.NoError(t, err)
	assert.Equal(t, digest.Sum, h.Sum(nil))
}

func TestDigester_MissingFile(t *testing.T) {
	d, err := fs.NewDigester(domain.DigestMD5)
	require.NoError(t, err)

	_, err = d.Digest(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrDigestComputationFailed))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestNewDigester_UnknownAlgorithm(t *testing.T) {
	_, err := fs.NewDigester("crc32")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnknownDigestAlgorithm))
}
