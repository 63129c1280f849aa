package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/ferry/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Synchronizer = (*Synchronizer)(nil)

// Synchronizer keeps artifact destinations identical to their sources.
// It holds no state between calls; every decision is recomputed from the filesystem.
type Synchronizer struct {
	digester ports.Digester
	logger   ports.Logger
}

// NewSynchronizer creates a new Synchronizer.
func NewSynchronizer(digester ports.Digester, logger ports.Logger) *Synchronizer {
	return &Synchronizer{digester: digester, logger: logger}
}

// Synchronize copies artifact.Source over artifact.Destination unless both
// already hold the same content.
func (s *Synchronizer) Synchronize(ctx context.Context, artifact domain.Artifact) (domain.SyncResult, error) {
	result := domain.SyncResult{Artifact: artifact.Name}

	srcInfo, err := os.Stat(artifact.Source)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return result, missingSourceError(artifact)
	case err != nil:
		// The source exists but cannot be inspected.
		return result, zerr.With(syncError(artifact, domain.ErrDigestComputationFailed, err), "path", artifact.Source)
	case !srcInfo.Mode().IsRegular():
		return result, missingSourceError(artifact)
	}

	dir := filepath.Dir(artifact.Destination)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return result, zerr.With(syncError(artifact, domain.ErrDirectoryCreationFailed, err), "dir", dir)
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	decision, outcome, srcDigest, err := s.decide(artifact, srcInfo)
	if err != nil {
		return result, err
	}
	result.Decision = decision
	result.Outcome = outcome
	result.SourceDigest = srcDigest

	if decision == domain.DecisionCopy {
		digest, n, err := s.copyFile(artifact, srcInfo.Mode().Perm())
		if err != nil {
			return result, err
		}
		result.SourceDigest = digest
		result.BytesCopied = n
	}

	s.logger.Info(fmt.Sprintf("%s %s -> %s (%s %s)",
		result.Outcome, artifact.Name, artifact.Destination, s.digester.Algorithm(), result.SourceDigest.Short()))

	return result, nil
}

// decide compares source and destination. The size check avoids reading
// either file when the lengths already differ.
func (s *Synchronizer) decide(
	artifact domain.Artifact,
	srcInfo os.FileInfo,
) (domain.SyncDecision, domain.SyncOutcome, domain.Digest, error) {
	dstInfo, err := os.Stat(artifact.Destination)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return domain.DecisionCopy, domain.OutcomeCreated, domain.Digest{}, nil
	case err != nil:
		return 0, "", domain.Digest{}, zerr.With(
			syncError(artifact, domain.ErrDigestComputationFailed, err), "path", artifact.Destination)
	case !dstInfo.Mode().IsRegular():
		return 0, "", domain.Digest{}, zerr.With(
			syncError(artifact, domain.ErrCopyFailed, errors.New("destination is not a regular file")),
			"destination", artifact.Destination)
	case dstInfo.Size() != srcInfo.Size():
		return domain.DecisionCopy, domain.OutcomeUpdated, domain.Digest{}, nil
	}

	srcDigest, err := s.digester.Digest(artifact.Source)
	if err != nil {
		return 0, "", domain.Digest{}, zerr.Wrap(err, "failed to sync artifact "+artifact.Name)
	}
	dstDigest, err := s.digester.Digest(artifact.Destination)
	if err != nil {
		return 0, "", domain.Digest{}, zerr.Wrap(err, "failed to sync artifact "+artifact.Name)
	}

	if srcDigest.Equal(dstDigest) {
		return domain.DecisionSkip, domain.OutcomeUnchanged, srcDigest, nil
	}
	return domain.DecisionCopy, domain.OutcomeUpdated, srcDigest, nil
}

// copyFile streams the source into a temporary file next to the destination
// and renames it into place. The source digest is computed in the same pass.
func (s *Synchronizer) copyFile(artifact domain.Artifact, perm os.FileMode) (domain.Digest, int64, error) {
	fail := func(err error) error {
		return zerr.With(zerr.With(syncError(artifact, domain.ErrCopyFailed, err),
			"source", artifact.Source), "destination", artifact.Destination)
	}

	src, err := os.Open(artifact.Source)
	if err != nil {
		return domain.Digest{}, 0, fail(err)
	}
	defer src.Close() //nolint:errcheck // Read-only handle

	tmp, err := os.CreateTemp(filepath.Dir(artifact.Destination), domain.TempFilePattern)
	if err != nil {
		return domain.Digest{}, 0, fail(err)
	}
	tmpName := tmp.Name()

	// Clean up temp file on error
	defer func() {
		if _, err := os.Stat(tmpName); err == nil {
			_ = os.Remove(tmpName)
		}
	}()

	h := s.digester.NewHash()
	n, err := io.Copy(io.MultiWriter(tmp, h), src)
	if err != nil {
		_ = tmp.Close()
		return domain.Digest{}, 0, fail(err)
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return domain.Digest{}, 0, fail(err)
	}

	if err := tmp.Close(); err != nil {
		return domain.Digest{}, 0, fail(err)
	}

	if err := os.Chmod(tmpName, perm); err != nil {
		return domain.Digest{}, 0, fail(err)
	}

	// Atomic rename
	if err := os.Rename(tmpName, artifact.Destination); err != nil {
		return domain.Digest{}, 0, fail(err)
	}

	return domain.Digest{Algorithm: s.digester.Algorithm(), Sum: h.Sum(nil)}, n, nil
}

func syncError(artifact domain.Artifact, kind, cause error) error {
	return zerr.Wrap(errors.Join(kind, cause), "failed to sync artifact "+artifact.Name)
}

func missingSourceError(artifact domain.Artifact) error {
	err := zerr.With(zerr.Wrap(domain.ErrMissingSource, "failed to sync artifact "+artifact.Name), "source", artifact.Source)
	if artifact.Remediation != "" {
		err = zerr.With(err, "remediation", artifact.Remediation)
	}
	return err
}
