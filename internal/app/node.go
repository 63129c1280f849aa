package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/ferry/internal/adapters/config"  //nolint:depguard // Wired in app layer
	"go.trai.ch/ferry/internal/adapters/fs"      //nolint:depguard // Wired in app layer
	"go.trai.ch/ferry/internal/adapters/logger"  //nolint:depguard // Wired in app layer
	"go.trai.ch/ferry/internal/adapters/watcher" //nolint:depguard // Wired in app layer
	"go.trai.ch/ferry/internal/core/ports"
	"go.trai.ch/ferry/internal/engine/scheduler"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			logger.NodeID,
			fs.SynchronizerNodeID,
			watcher.NodeID,
			scheduler.NodeID,
		},
		Run: runAppNode,
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return &Components{App: app, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	newSynchronizer, err := graft.Dep[ports.SynchronizerFactory](ctx)
	if err != nil {
		return nil, err
	}

	fileWatcher, err := graft.Dep[ports.Watcher](ctx)
	if err != nil {
		return nil, err
	}

	sched, err := graft.Dep[*scheduler.Scheduler](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, log, newSynchronizer, fileWatcher, sched), nil
}
