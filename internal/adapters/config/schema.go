package config

// Ferryfile represents the structure of the ferry.yaml configuration file.
type Ferryfile struct {
	Version   string                  `yaml:"version"`
	Root      string                  `yaml:"root"`
	Digest    string                  `yaml:"digest"`
	VarsFile  string                  `yaml:"varsFile"`
	Tasks     map[string]*TaskDTO     `yaml:"tasks"`
	Artifacts map[string]*ArtifactDTO `yaml:"artifacts"`
}

// TaskDTO represents a task definition in the configuration.
type TaskDTO struct {
	Cmd         []string          `yaml:"cmd"`
	DependsOn   []string          `yaml:"dependsOn"`
	Environment map[string]string `yaml:"environment"`
	WorkingDir  string            `yaml:"workingDir"`
}

// ArtifactDTO represents an artifact definition in the configuration.
type ArtifactDTO struct {
	Source      string   `yaml:"source"`
	Destination string   `yaml:"destination"`
	Remediation string   `yaml:"remediation"`
	Consumers   []string `yaml:"consumers"`
}
