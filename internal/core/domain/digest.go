package domain

import (
	"bytes"
	"encoding/hex"

	"go.trai.ch/zerr"
)

// DigestAlgorithm names the hash function used to fingerprint artifact content.
type DigestAlgorithm string

const (
	// DigestXXHash is the 64-bit XXH64 hash. It is the default.
	DigestXXHash DigestAlgorithm = "xxhash"
	// DigestBlake3 is the 256-bit BLAKE3 hash.
	DigestBlake3 DigestAlgorithm = "blake3"
	// DigestMD5 is the 128-bit MD5 hash.
	DigestMD5 DigestAlgorithm = "md5"
)

// ParseDigestAlgorithm resolves a configured algorithm name.
// The empty string selects DigestXXHash.
func ParseDigestAlgorithm(name string) (DigestAlgorithm, error) {
	switch DigestAlgorithm(name) {
	case "":
		return DigestXXHash, nil
	case DigestXXHash, DigestBlake3, DigestMD5:
		return DigestAlgorithm(name), nil
	default:
		return "", zerr.With(zerr.Wrap(ErrUnknownDigestAlgorithm, "invalid configuration"), "digest", name)
	}
}

// Digest is a content fingerprint.
type Digest struct {
	Algorithm DigestAlgorithm
	Sum       []byte
}

// Equal reports whether both digests were produced by the same algorithm over equal content.
func (d Digest) Equal(other Digest) bool {
	return d.Algorithm == other.Algorithm && bytes.Equal(d.Sum, other.Sum)
}

// IsZero reports whether the digest was never computed.
func (d Digest) IsZero() bool {
	return len(d.Sum) == 0
}

// String returns the lowercase hex encoding of the sum.
func (d Digest) String() string {
	return hex.EncodeToString(d.Sum)
}

// Short returns the first 12 hex characters, for log lines.
func (d Digest) Short() string {
	s := d.String()
	if len(s) > 12 {
		return s[:12]
	}
	return s
}
