package fs

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/ferry/internal/adapters/logger" //nolint:depguard // Synchronizer logs its outcome
	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/ferry/internal/core/ports"
)

// SynchronizerNodeID is the unique identifier for the synchronizer factory Graft node.
const SynchronizerNodeID graft.ID = "adapter.fs.synchronizer"

func init() {
	graft.Register(graft.Node[ports.SynchronizerFactory]{
		ID:        SynchronizerNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.SynchronizerFactory, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewSynchronizerFactory(log), nil
		},
	})
}

// NewSynchronizerFactory returns a factory producing Synchronizers that log to log.
func NewSynchronizerFactory(log ports.Logger) ports.SynchronizerFactory {
	return func(algorithm domain.DigestAlgorithm) (ports.Synchronizer, error) {
		digester, err := NewDigester(algorithm)
		if err != nil {
			return nil, err
		}
		return NewSynchronizer(digester, log), nil
	}
}
