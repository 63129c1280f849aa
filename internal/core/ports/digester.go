package ports

import (
	"hash"

	"go.trai.ch/ferry/internal/core/domain"
)

// Digester fingerprints file content.
//
//go:generate mockgen -source=digester.go -destination=mocks/mock_digester.go -package=mocks
type Digester interface {
	// Algorithm reports which hash function the digester uses.
	Algorithm() domain.DigestAlgorithm

	// NewHash returns a fresh streaming hash for Algorithm.
	NewHash() hash.Hash

	// Digest streams the file at path through the hash.
	Digest(path string) (domain.Digest, error)
}
