// Package registry wires the capability contracts to concrete
// implementations. Bindings are two-armed: resolving a capability consults
// the execution context once, constructs the matching arm, and caches the
// instance as a singleton for the registry's lifetime. Dependent bindings
// resolve their dependencies back through the registry, so a test
// overriding one capability reshapes everything built on top of it.
package registry

import (
	"fmt"
	"sync"

	"github.com/systmms/kstack/internal/kube"
	"github.com/systmms/kstack/internal/logging"
	"github.com/systmms/kstack/pkg/provider"
	"github.com/systmms/kstack/pkg/stack"
)

// Capability names one pluggable concern.
type Capability string

const (
	CapEnvironmentDetector Capability = "environment-detector"
	CapSecretOrigin        Capability = "secret-origin"
	CapCredentialSource    Capability = "credential-source"
	CapSessionFactory      Capability = "session-factory"
)

// Factory constructs one capability instance. Factories needing another
// capability resolve it through the registry they receive.
type Factory func(r *Registry) (any, error)

// Registry resolves capabilities lazily and caches each result.
type Registry struct {
	inCluster   func() bool
	logger      *logging.Logger
	projectRoot string
	vaultDir    string
	kubeClient  kube.ClientFunc

	mu        sync.Mutex
	bindings  map[Capability]Factory
	instances map[Capability]any
}

// Option adjusts a fresh registry.
type Option func(*Registry)

// WithContextProbe replaces the execution context predicate.
func WithContextProbe(inCluster func() bool) Option {
	return func(r *Registry) {
		if inCluster != nil {
			r.inCluster = inCluster
		}
	}
}

// WithLogger routes construction and resolution diagnostics.
func WithLogger(logger *logging.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithProjectRoot anchors vault discovery and the config marker search.
func WithProjectRoot(dir string) Option {
	return func(r *Registry) { r.projectRoot = dir }
}

// WithVaultDir pins the vault directory, skipping discovery.
func WithVaultDir(dir string) Option {
	return func(r *Registry) { r.vaultDir = dir }
}

// WithKubeClient replaces the cluster clientset constructor.
func WithKubeClient(client kube.ClientFunc) Option {
	return func(r *Registry) { r.kubeClient = client }
}

// New builds an isolated registry carrying the default two-armed bindings.
func New(opts ...Option) *Registry {
	r := &Registry{
		inCluster: stack.InCluster,
		logger:    logging.New(false, true),
		bindings:  make(map[Capability]Factory, 4),
		instances: make(map[Capability]any, 4),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.bindings[CapEnvironmentDetector] = environmentDetectorFactory
	r.bindings[CapSecretOrigin] = secretOriginFactory
	r.bindings[CapCredentialSource] = credentialSourceFactory
	r.bindings[CapSessionFactory] = sessionFactoryFactory
	return r
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
)

// Default returns the shared process-wide registry. Tests should build
// isolated instances with New instead.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultReg = New()
	})
	return defaultReg
}

// InCluster reports the execution context this registry resolves against.
func (r *Registry) InCluster() bool {
	return r.inCluster()
}

// Logger returns the registry's logger for components built on top of it.
func (r *Registry) Logger() *logging.Logger {
	return r.logger
}

// Bind replaces a capability's factory and drops any cached instance.
func (r *Registry) Bind(cap Capability, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings[cap] = factory
	delete(r.instances, cap)
}

// Override pins an already-constructed instance on this registry only.
func (r *Registry) Override(cap Capability, instance any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.instances[cap] = instance
}

// Get resolves a capability, constructing it on first use. The factory
// runs outside the lock so dependent factories can resolve back through
// the registry; when constructions race, the first cached instance wins
// and the rest are discarded.
func (r *Registry) Get(cap Capability) (any, error) {
	r.mu.Lock()
	if inst, ok := r.instances[cap]; ok {
		r.mu.Unlock()
		return inst, nil
	}
	factory, ok := r.bindings[cap]
	r.mu.Unlock()

	if !ok {
		return nil, fmt.Errorf("no binding for capability %q", cap)
	}
	inst, err := factory(r)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if cached, ok := r.instances[cap]; ok {
		return cached, nil
	}
	r.instances[cap] = inst
	r.logger.Debug("resolved capability %s as %T", cap, inst)
	return inst, nil
}

// EnvironmentDetector resolves the environment-detector capability.
func (r *Registry) EnvironmentDetector() (provider.EnvironmentDetector, error) {
	return resolveAs[provider.EnvironmentDetector](r, CapEnvironmentDetector)
}

// SecretOrigin resolves the secret-origin capability.
func (r *Registry) SecretOrigin() (provider.SecretOrigin, error) {
	return resolveAs[provider.SecretOrigin](r, CapSecretOrigin)
}

// CredentialSource resolves the credential-source capability.
func (r *Registry) CredentialSource() (provider.CredentialSource, error) {
	return resolveAs[provider.CredentialSource](r, CapCredentialSource)
}

// Sessions resolves the session-factory capability.
func (r *Registry) Sessions() (provider.SessionFactory, error) {
	return resolveAs[provider.SessionFactory](r, CapSessionFactory)
}

func resolveAs[T any](r *Registry, cap Capability) (T, error) {
	var zero T
	inst, err := r.Get(cap)
	if err != nil {
		return zero, err
	}
	typed, ok := inst.(T)
	if !ok {
		return zero, fmt.Errorf("capability %q: %T does not satisfy the contract", cap, inst)
	}
	return typed, nil
}
