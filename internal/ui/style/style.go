// Package style holds the brand colors and icons shared by the renderers and the logger.
package style

import (
	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/ferry/internal/core/domain"
)

// Brand Colors.
var (
	Harbor = lipgloss.Color("#2563EB")
	Slate  = lipgloss.Color("#667085")
	Green  = lipgloss.Color("#22A06B")
	Red    = lipgloss.Color("#D93025")
	Yellow = lipgloss.Color("#F59E0B")
)

// Icons.
const (
	Check   = "✓"
	Cross   = "✗"
	Warning = "!"
	Tilde   = "~"
	Arrow   = "→"
)

// OutcomeIcon returns the icon shown next to a synchronization outcome.
func OutcomeIcon(outcome domain.SyncOutcome) string {
	switch outcome {
	case domain.OutcomeCreated, domain.OutcomeUpdated:
		return Check
	case domain.OutcomeUnchanged:
		return Tilde
	default:
		return Warning
	}
}
