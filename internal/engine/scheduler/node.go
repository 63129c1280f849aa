package scheduler

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/ferry/internal/adapters/shell"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/ferry/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/ferry/internal/core/ports"
)

// NodeID is the unique identifier for the scheduler Graft node.
const NodeID graft.ID = "engine.scheduler"

func init() {
	graft.Register(graft.Node[*Scheduler]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{shell.NodeID},
		Run: func(ctx context.Context) (*Scheduler, error) {
			executor, err := graft.Dep[ports.Executor](ctx)
			if err != nil {
				return nil, err
			}
			// The run's renderer-bound tracer is attached with WithTracer.
			return NewScheduler(executor, telemetry.NewNoOpTracer()), nil
		},
	})
}
