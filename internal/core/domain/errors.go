package domain

import "go.trai.ch/zerr"

// Synchronization errors.
var (
	// ErrMissingSource is returned when the source artifact does not exist.
	// It carries "source" and "remediation" metadata.
	ErrMissingSource = zerr.New("source artifact not found")

	// ErrDirectoryCreationFailed is returned when the destination's parent directory cannot be created.
	ErrDirectoryCreationFailed = zerr.New("failed to create destination directory")

	// ErrDigestComputationFailed is returned when a file cannot be read while fingerprinting it.
	ErrDigestComputationFailed = zerr.New("failed to compute content digest")

	// ErrCopyFailed is returned when the source cannot be copied over the destination.
	ErrCopyFailed = zerr.New("failed to copy artifact")

	// ErrUnknownDigestAlgorithm is returned when a configured digest algorithm is not supported.
	ErrUnknownDigestAlgorithm = zerr.New("unknown digest algorithm, expected 'xxhash', 'blake3' or 'md5'")

	// ErrArtifactNotFound is returned when a requested artifact is not declared.
	ErrArtifactNotFound = zerr.New("artifact not found")

	// ErrWatchFailed is returned when source artifacts cannot be watched for changes.
	ErrWatchFailed = zerr.New("failed to watch source artifacts")
)

// Graph errors.
var (
	// ErrTaskAlreadyExists is returned when attempting to add a task with a name that already exists.
	ErrTaskAlreadyExists = zerr.New("task already exists")

	// ErrMissingDependency is returned when a task references a dependency that doesn't exist in the graph.
	ErrMissingDependency = zerr.New("missing dependency")

	// ErrCycleDetected is returned when a cycle is detected in the task dependency graph.
	ErrCycleDetected = zerr.New("cycle detected")

	// ErrTaskNotFound is returned when a requested task is not found in the graph.
	ErrTaskNotFound = zerr.New("task not found")

	// ErrNoTargetsSpecified is returned when no targets are specified for the run command.
	ErrNoTargetsSpecified = zerr.New("no targets specified")

	// ErrBuildExecutionFailed is returned when the build execution fails.
	ErrBuildExecutionFailed = zerr.New("build execution failed")

	// ErrTaskExecutionFailed is returned when a task execution fails.
	ErrTaskExecutionFailed = zerr.New("task execution failed")
)

// Configuration errors.
var (
	// ErrConfigNotFound is returned when no ferry.yaml is found walking up from the working directory.
	ErrConfigNotFound = zerr.New("could not find ferry.yaml")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrVarsReadFailed is returned when an existing vars file cannot be parsed.
	ErrVarsReadFailed = zerr.New("failed to read vars file")

	// ErrReservedTaskName is returned when a task uses a reserved name (e.g., "all").
	ErrReservedTaskName = zerr.New("task name 'all' is reserved")

	// ErrInvalidTaskName is returned when a task name contains invalid characters.
	ErrInvalidTaskName = zerr.New("invalid task name")

	// ErrInvalidArtifact is returned when an artifact declaration lacks a source or destination.
	ErrInvalidArtifact = zerr.New("artifact requires both source and destination")
)

// Command execution errors.
var (
	// ErrCommandFailed is returned when a task command exits unsuccessfully.
	ErrCommandFailed = zerr.New("command failed")
)
