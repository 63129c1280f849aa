package logger

import (
	"context"
	"os"
	"strings"

	"github.com/grindlemire/graft"
	"go.trai.ch/ferry/internal/core/ports"
)

// NodeID is the unique identifier for the logger Graft node.
const NodeID graft.ID = "adapter.logger"

// FormatEnv selects the log format. "json" switches to structured records for CI.
const FormatEnv = "FERRY_LOG_FORMAT"

func init() {
	graft.Register(graft.Node[ports.Logger]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Logger, error) {
			return NewFromEnv(os.Getenv), nil
		},
	})
}

// NewFromEnv creates a Logger whose format is read through getenv.
func NewFromEnv(getenv func(string) string) *Logger {
	lg := New().(*Logger)
	if strings.EqualFold(strings.TrimSpace(getenv(FormatEnv)), "json") {
		lg.SetJSON(true)
	}
	return lg
}
