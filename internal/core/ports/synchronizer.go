package ports

import (
	"context"

	"go.trai.ch/ferry/internal/core/domain"
)

// Synchronizer keeps an artifact's destination a byte-for-byte copy of its source.
//
//go:generate mockgen -source=synchronizer.go -destination=mocks/mock_synchronizer.go -package=mocks
type Synchronizer interface {
	// Synchronize inspects source and destination and copies only when they differ.
	// Calling it again without changes to the source is a no-op.
	Synchronize(ctx context.Context, artifact domain.Artifact) (domain.SyncResult, error)
}

// SynchronizerFactory builds a Synchronizer that fingerprints with algorithm.
// The algorithm is only known once the project configuration has been loaded.
type SynchronizerFactory func(algorithm domain.DigestAlgorithm) (Synchronizer, error)
