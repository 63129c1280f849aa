// Package config provides the configuration loader for ferry.
package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"regexp"
	"slices"

	"github.com/joho/godotenv"
	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/ferry/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

var _ ports.ConfigLoader = (*Loader)(nil)

// SupportedVersion is the configuration schema version this loader understands.
const SupportedVersion = "1"

var validNameRegex = regexp.MustCompile(`^[a-zA-Z0-9_:.-]+$`)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load finds ferry.yaml at or above cwd and converts it into a domain.Project.
func (l *Loader) Load(cwd string) (*domain.Project, error) {
	configPath, err := findConfiguration(cwd)
	if err != nil {
		return nil, err
	}

	var file Ferryfile
	if err := readAndUnmarshalYAML(configPath, &file); err != nil {
		return nil, err
	}

	if file.Version != "" && file.Version != SupportedVersion {
		l.Logger.Warn(fmt.Sprintf("%s declares version %q, expected %q", configPath, file.Version, SupportedVersion))
	}

	root := resolveRoot(configPath, file.Root)

	digest, err := domain.ParseDigestAlgorithm(file.Digest)
	if err != nil {
		return nil, zerr.With(err, "path", configPath)
	}

	vars, err := l.loadVars(root, file.VarsFile)
	if err != nil {
		return nil, err
	}
	expand := expander(vars)

	tasks, err := buildTasks(root, file.Tasks, expand)
	if err != nil {
		return nil, err
	}

	artifacts, err := buildArtifacts(root, file.Artifacts, expand)
	if err != nil {
		return nil, err
	}

	return &domain.Project{
		Root:      root,
		Digest:    digest,
		Tasks:     tasks,
		Artifacts: artifacts,
	}, nil
}

// DiscoverRoot returns the directory containing the nearest ferry.yaml.
func (l *Loader) DiscoverRoot(cwd string) (string, error) {
	configPath, err := findConfiguration(cwd)
	if err != nil {
		return "", err
	}
	return filepath.Dir(configPath), nil
}

func findConfiguration(cwd string) (string, error) {
	currentDir, err := filepath.Abs(cwd)
	if err != nil {
		return "", zerr.With(zerr.Wrap(errors.Join(domain.ErrConfigNotFound, err), "failed to resolve working directory"), "cwd", cwd)
	}

	for {
		candidate := filepath.Join(currentDir, domain.ConfigFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			// Reached root
			break
		}
		currentDir = parentDir
	}

	return "", zerr.With(zerr.Wrap(domain.ErrConfigNotFound, "failed to load configuration"), "cwd", cwd)
}

// loadVars reads the optional KEY=VALUE file. A missing file yields no variables.
func (l *Loader) loadVars(root, varsFile string) (map[string]string, error) {
	if varsFile == "" {
		return map[string]string{}, nil
	}

	path := varsFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}

	vars, err := godotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(errors.Join(domain.ErrVarsReadFailed, err), "failed to load configuration"), "path", path)
	}
	return vars, nil
}

// expander returns a function replacing ${NAME} with the vars file entry,
// falling back to the process environment.
func expander(vars map[string]string) func(string) string {
	lookup := func(key string) string {
		if v, ok := vars[key]; ok {
			return v
		}
		return os.Getenv(key)
	}
	return func(s string) string {
		return os.Expand(s, lookup)
	}
}

func buildTasks(root string, dtos map[string]*TaskDTO, expand func(string) string) ([]domain.Task, error) {
	names := slices.Sorted(maps.Keys(dtos))
	tasks := make([]domain.Task, 0, len(names))

	for _, name := range names {
		if err := validateTaskName(name); err != nil {
			return nil, err
		}

		dto := dtos[name]
		if dto == nil {
			dto = &TaskDTO{}
		}

		for _, dep := range dto.DependsOn {
			if _, ok := dtos[dep]; !ok {
				err := zerr.With(zerr.Wrap(domain.ErrMissingDependency, "invalid configuration"), "task", name)
				return nil, zerr.With(err, "missing_dependency", dep)
			}
		}

		var command []string
		for _, arg := range dto.Cmd {
			command = append(command, expand(arg))
		}

		var env map[string]string
		if len(dto.Environment) > 0 {
			env = make(map[string]string, len(dto.Environment))
			for k, v := range dto.Environment {
				env[k] = expand(v)
			}
		}

		tasks = append(tasks, domain.Task{
			Name:         domain.NewInternedString(name),
			Command:      command,
			Dependencies: canonicalizeStrings(dto.DependsOn),
			Environment:  env,
			WorkingDir:   domain.NewInternedString(resolvePath(root, expand(dto.WorkingDir))),
		})
	}
	return tasks, nil
}

func buildArtifacts(root string, dtos map[string]*ArtifactDTO, expand func(string) string) ([]domain.Artifact, error) {
	names := slices.Sorted(maps.Keys(dtos))
	artifacts := make([]domain.Artifact, 0, len(names))

	for _, name := range names {
		if !validNameRegex.MatchString(name) {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidArtifact, "invalid configuration"), "artifact", name)
		}

		dto := dtos[name]
		if dto == nil || dto.Source == "" || dto.Destination == "" {
			return nil, zerr.With(zerr.Wrap(domain.ErrInvalidArtifact, "invalid configuration"), "artifact", name)
		}

		consumers := slices.Clone(dto.Consumers)
		slices.Sort(consumers)

		artifacts = append(artifacts, domain.Artifact{
			Name:        name,
			Source:      resolvePath(root, expand(dto.Source)),
			Destination: resolvePath(root, expand(dto.Destination)),
			Remediation: expand(dto.Remediation),
			Consumers:   slices.Compact(consumers),
		})
	}
	return artifacts, nil
}

func validateTaskName(name string) error {
	if name == domain.AllTarget {
		return zerr.With(zerr.Wrap(domain.ErrReservedTaskName, "invalid configuration"), "task_name", name)
	}
	if !validNameRegex.MatchString(name) {
		return zerr.With(zerr.Wrap(domain.ErrInvalidTaskName, "invalid configuration"), "task_name", name)
	}
	return nil
}

func canonicalizeStrings(strs []string) []domain.InternedString {
	if len(strs) == 0 {
		return nil
	}
	sorted := slices.Clone(strs)
	slices.Sort(sorted)
	return domain.InternAll(slices.Compact(sorted))
}

func resolveRoot(configPath, configuredRoot string) string {
	return resolvePath(filepath.Dir(configPath), configuredRoot)
}

// resolvePath anchors p at base unless it is already absolute.
func resolvePath(base, p string) string {
	if p == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Clean(filepath.Join(base, p))
}

// readAndUnmarshalYAML reads a YAML file and unmarshals it into the target struct.
func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is discovered by findConfiguration
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.With(zerr.Wrap(errors.Join(domain.ErrConfigReadFailed, err), "failed to load configuration"), "path", configPath)
	}

	if err := yaml.Unmarshal(configFile, target); err != nil {
		return zerr.With(zerr.Wrap(errors.Join(domain.ErrConfigParseFailed, err), "failed to load configuration"), "path", configPath)
	}
	return nil
}
