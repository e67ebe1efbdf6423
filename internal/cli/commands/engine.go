// Package commands implements the dynsql subcommands.
package commands

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/leapstack-labs/dynsql/internal/cli/config"
	"github.com/leapstack-labs/dynsql/pkg/core"
	"github.com/leapstack-labs/dynsql/pkg/sqlgen"
	"github.com/spf13/cobra"
)

// newEngine loads the registry named by the command's config and builds an
// engine over it.
func newEngine(cmd *cobra.Command) (*sqlgen.Engine, *config.Config, *slog.Logger, error) {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	logger := config.GetLogger(ctx)

	eng, err := loadEngine(cfg.Registry, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return eng, cfg, logger, nil
}

// loadEngine reads a registry document from disk and builds an engine.
func loadEngine(path string, logger *slog.Logger) (*sqlgen.Engine, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path comes from user configuration
	if err != nil {
		return nil, fmt.Errorf("failed to read registry: %w", err)
	}
	eng, err := sqlgen.FromConfig(data, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load registry %s: %w", path, err)
	}
	return eng, nil
}

// parseParams builds a parameter bag from --params-json and repeated
// --param k=v flags; the k=v flags win on key collisions. A k=v value
// that parses as a base-10 int64 (an optional sign followed by digits)
// becomes an integer parameter, one starting with
// '{' or '[' is decoded as JSON, anything else is a string.
func parseParams(paramsJSON string, pairs []string) (core.Params, error) {
	params := core.Params{}
	if paramsJSON != "" {
		v, err := core.ParseJSON([]byte(paramsJSON))
		if err != nil {
			return nil, fmt.Errorf("invalid --params-json: %w", err)
		}
		obj, ok := v.Object()
		if !ok {
			return nil, fmt.Errorf("invalid --params-json: expected a JSON object")
		}
		for key, raw := range obj {
			params.Set(key, core.FromJSON(raw))
		}
	}

	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --param %q: expected key=value", pair)
		}
		v, err := paramValue(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid --param %q: %w", pair, err)
		}
		params.Set(key, v)
	}
	return params, nil
}

func paramValue(raw string) (core.Value, error) {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return core.Int(n), nil
	}
	if strings.HasPrefix(raw, "{") || strings.HasPrefix(raw, "[") {
		return core.ParseJSON([]byte(raw))
	}
	return core.Str(raw), nil
}
