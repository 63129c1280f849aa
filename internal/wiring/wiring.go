// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/ferry/internal/adapters/config"
	_ "go.trai.ch/ferry/internal/adapters/fs"
	_ "go.trai.ch/ferry/internal/adapters/logger"
	_ "go.trai.ch/ferry/internal/adapters/shell"
	_ "go.trai.ch/ferry/internal/adapters/watcher"
	// Register app and engine nodes.
	_ "go.trai.ch/ferry/internal/app"
	_ "go.trai.ch/ferry/internal/engine/scheduler"
)
