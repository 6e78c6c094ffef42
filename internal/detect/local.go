package detect

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/systmms/kstack/pkg/provider"
	"github.com/systmms/kstack/pkg/stack"
)

// ConfigFile is the project marker a workstation reads for its track
// selection.
const ConfigFile = ".kstack.yaml"

// configSearchDepth mirrors vault discovery: the marker may sit up to
// three parents above the starting directory.
const configSearchDepth = 3

// LocalDetector resolves the track from a .kstack.yaml project marker.
// All layers of a checkout share one selection, so the layer argument only
// satisfies the detector contract.
type LocalDetector struct {
	projectRoot string
}

// LocalOptions configure construction. The zero value works on a
// workstation: the marker search starts at the working directory and the
// real context probe is used.
type LocalOptions struct {
	ProjectRoot string
	InCluster   func() bool
}

// NewLocalDetector guards the execution context before anything else; a
// pod asking for the local detector is a wiring bug, not a fallback case.
func NewLocalDetector(opts LocalOptions) (*LocalDetector, error) {
	if err := provider.EnsureContext("local environment detector", stack.ContextLocal, opts.InCluster); err != nil {
		return nil, err
	}
	return &LocalDetector{projectRoot: opts.ProjectRoot}, nil
}

// Environment resolves the active track: KSTACK_ENV, then the project
// marker, then the dev default. A missing marker is the normal fresh
// checkout state; a malformed one is an error the operator must fix.
func (d *LocalDetector) Environment(ctx context.Context, layer stack.Layer) (stack.Environment, error) {
	if env, ok, err := overrideEnvironment(); err != nil || ok {
		return env, err
	}

	path, found := d.findConfig()
	if !found {
		return stack.DefaultEnvironment, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", provider.ConfigurationError{Source: path, Message: "unreadable config file", Err: err}
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return "", provider.ConfigurationError{Source: path, Message: "invalid YAML", Err: err}
	}

	raw, ok := doc["environment"]
	if !ok {
		return "", provider.ConfigurationError{Source: path, Message: "missing environment key"}
	}
	value, ok := raw.(string)
	if !ok {
		return "", provider.ConfigurationError{Source: path, Message: fmt.Sprintf("environment must be a string, got %T", raw)}
	}
	env, err := stack.ParseEnvironment(value)
	if err != nil {
		return "", provider.ConfigurationError{Source: path, Message: "invalid environment", Err: err}
	}
	return env, nil
}

func (d *LocalDetector) findConfig() (string, bool) {
	base := d.projectRoot
	if base == "" {
		if cwd, err := os.Getwd(); err == nil {
			base = cwd
		} else {
			base = "."
		}
	}

	dir := base
	for i := 0; i <= configSearchDepth; i++ {
		candidate := filepath.Join(dir, ConfigFile)
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false
}
