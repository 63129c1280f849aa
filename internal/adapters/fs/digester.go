package fs

import (
	"crypto/md5" //nolint:gosec // md5 is a content fingerprint here, not a security boundary
	"errors"
	"hash"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/zeebo/blake3"
	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/ferry/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Digester = (*Digester)(nil)

// Digester streams file content through one of the supported hash functions.
type Digester struct {
	algorithm domain.DigestAlgorithm
	newHash   func() hash.Hash
}

// NewDigester creates a Digester for algorithm.
func NewDigester(algorithm domain.DigestAlgorithm) (*Digester, error) {
	var newHash func() hash.Hash
	switch algorithm {
	case domain.DigestXXHash:
		newHash = func() hash.Hash { return xxhash.New() }
	case domain.DigestBlake3:
		newHash = func() hash.Hash { return blake3.New() }
	case domain.DigestMD5:
		newHash = md5.New
	default:
		return nil, zerr.With(zerr.Wrap(domain.ErrUnknownDigestAlgorithm, "failed to create digester"), "digest", string(algorithm))
	}
	return &Digester{algorithm: algorithm, newHash: newHash}, nil
}

// Algorithm returns the hash function in use.
func (d *Digester) Algorithm() domain.DigestAlgorithm {
	return d.algorithm
}

// NewHash returns a fresh hash.
func (d *Digester) NewHash() hash.Hash {
	return d.newHash()
}

// Digest computes the digest of the file at path without loading it into memory.
func (d *Digester) Digest(path string) (domain.Digest, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return domain.Digest{}, digestError(path, err)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	h := d.newHash()
	if _, err := io.Copy(h, f); err != nil {
		return domain.Digest{}, digestError(path, err)
	}

	return domain.Digest{Algorithm: d.algorithm, Sum: h.Sum(nil)}, nil
}

func digestError(path string, err error) error {
	return zerr.With(zerr.Wrap(errors.Join(domain.ErrDigestComputationFailed, err), "failed to fingerprint file"), "path", path)
}
