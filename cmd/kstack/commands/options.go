package commands

import (
	"github.com/systmms/kstack/internal/logging"
	"github.com/systmms/kstack/pkg/registry"
)

// Options carries the state every kstack command shares: the logger built
// from the persistent flags, and the registry constructor commands use to
// resolve capabilities. Tests set NewRegistry to supply overridden
// bindings.
type Options struct {
	Logger *logging.Logger

	// NewRegistry builds the capability registry for one command
	// invocation, with any per-command options (e.g. an explicit vault
	// directory) passed through. Nil means registry.New with the shared
	// logger.
	NewRegistry func(extra ...registry.Option) *registry.Registry
}

func (o *Options) logger() *logging.Logger {
	if o.Logger == nil {
		o.Logger = logging.New(false, true)
	}
	return o.Logger
}

func (o *Options) registry(extra ...registry.Option) *registry.Registry {
	if o.NewRegistry != nil {
		return o.NewRegistry(extra...)
	}
	regOpts := append([]registry.Option{registry.WithLogger(o.logger())}, extra...)
	return registry.New(regOpts...)
}
