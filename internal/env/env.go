package env

import (
	"os"
	"strings"

	"github.com/atelier-vision/zoocard/internal/envvar"
)

// Environment is the runtime environment of the application.
type Environment string

const (
	// Development enables human-readable console logging.
	Development Environment = "development"

	// Production enables structured JSON logging.
	Production Environment = "production"
)

// FromEnv resolves the environment from ZOOCARD_ENV.
// Unknown or empty values resolve to Development.
func FromEnv() Environment {
	switch strings.ToLower(os.Getenv(envvar.ZoocardEnv)) {
	case "production", "prod":
		return Production
	default:
		return Development
	}
}

// IsProduction reports whether e is the production environment.
func (e Environment) IsProduction() bool {
	return e == Production
}
