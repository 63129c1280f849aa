package ports

import "go.trai.ch/ferry/internal/core/domain"

// ConfigLoader defines the interface for loading the project configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration found at or above cwd.
	Load(cwd string) (*domain.Project, error)

	// DiscoverRoot walks up from cwd to the directory containing ferry.yaml.
	DiscoverRoot(cwd string) (string, error)
}
