// Package config loads tool configuration for the dynsql CLI from the
// project file, environment variables, and command-line flags.
package config

// Default configuration values.
const (
	// DefaultRegistryFile is the template registry document looked up
	// when no --registry flag or config entry is given.
	DefaultRegistryFile = "sqls.json"

	// ConfigFileName is the name of the project config file.
	ConfigFileName = "dynsql.yaml"

	// ConfigFileNameAlt is the alternate name of the project config file.
	ConfigFileNameAlt = "dynsql.yml"

	// EnvPrefix is the prefix of environment variable overrides,
	// e.g. DYNSQL_REGISTRY.
	EnvPrefix = "DYNSQL_"
)

// Config holds the tool configuration.
type Config struct {
	// Registry is the path to the template registry JSON document.
	Registry string `koanf:"registry"`

	// Verbose enables debug logging.
	Verbose bool `koanf:"verbose"`
}
