package domain

const (
	// ConfigFileName is the name of the project configuration file.
	ConfigFileName = "ferry.yaml"

	// AllTarget is the reserved target name that selects every task.
	AllTarget = "all"

	// TempFilePattern is the pattern for staging files written next to a destination.
	TempFilePattern = ".ferry-*.tmp"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// PrivateFilePerm is the permission for files only the owner may read (rw-------).
	PrivateFilePerm = 0o600
)
