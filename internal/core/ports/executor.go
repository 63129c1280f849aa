// Package ports defines the core interfaces for the application.
package ports

import (
	"context"
	"io"

	"go.trai.ch/ferry/internal/core/domain"
)

// Executor defines the interface for executing task commands.
//
//go:generate mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type Executor interface {
	// Execute runs the task's command, merging the task environment over the
	// process environment. It returns an error if the command fails.
	Execute(ctx context.Context, task *domain.Task, stdout, stderr io.Writer) error
}
