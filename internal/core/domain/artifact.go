package domain

import (
	"strings"
	"unicode"
)

// Artifact declares a file that must be mirrored from an externally produced
// source into a destination owned by the project tree.
type Artifact struct {
	// Name identifies the artifact in configuration and on the command line.
	Name string

	// Source is the externally produced file. It is never written to.
	Source string

	// Destination is the mirrored copy. Its parent directory is created on demand.
	Destination string

	// Remediation tells the user how to produce Source when it is missing.
	Remediation string

	// Consumers are the task names that must run after the artifact is synchronized.
	Consumers []string
}

// TaskName returns the name of the graph node that synchronizes the artifact,
// e.g. "rust-binary" becomes "syncRustBinary".
func (a Artifact) TaskName() string {
	var b strings.Builder
	b.WriteString("sync")
	upper := true
	for _, r := range a.Name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if upper {
			b.WriteRune(unicode.ToUpper(r))
			upper = false
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SyncDecision is the outcome of comparing a source with its destination.
type SyncDecision uint8

const (
	// DecisionSkip means the destination already holds the source content.
	DecisionSkip SyncDecision = iota
	// DecisionCopy means the destination is absent or differs from the source.
	DecisionCopy
)

// String returns the string representation of the decision.
func (d SyncDecision) String() string {
	if d == DecisionCopy {
		return "copy"
	}
	return "skip"
}

// SyncOutcome is the user-visible terminal state of a successful synchronization.
type SyncOutcome string

const (
	// OutcomeCreated indicates the destination did not exist and was written.
	OutcomeCreated SyncOutcome = "created"
	// OutcomeUpdated indicates the destination existed with different content and was replaced.
	OutcomeUpdated SyncOutcome = "updated"
	// OutcomeUnchanged indicates the destination already matched and was left untouched.
	OutcomeUnchanged SyncOutcome = "unchanged"
)

// SyncResult describes what a single synchronization did.
type SyncResult struct {
	Artifact     string
	Decision     SyncDecision
	Outcome      SyncOutcome
	SourceDigest Digest
	BytesCopied  int64
}
