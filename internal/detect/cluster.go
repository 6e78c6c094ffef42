package detect

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/systmms/kstack/internal/kube"
	"github.com/systmms/kstack/pkg/provider"
	"github.com/systmms/kstack/pkg/stack"
)

const (
	// RouteConfigMap is the per-namespace object holding the live route.
	RouteConfigMap = "kstack-route"
	// RouteKey is the ConfigMap data key carrying the route name.
	RouteKey = "active-route"
)

// ClusterDetector resolves the track from the route selection stored in
// the layer's namespace. The clientset is built lazily so construction
// stays I/O-free.
type ClusterDetector struct {
	client kube.ClientFunc

	once      sync.Once
	clientset kubernetes.Interface
	clientErr error
}

// ClusterOptions configure construction. The zero value works inside a
// pod: the in-cluster clientset and the real context probe are used.
type ClusterOptions struct {
	Client    kube.ClientFunc
	InCluster func() bool
}

// NewClusterDetector guards the execution context before anything else.
func NewClusterDetector(opts ClusterOptions) (*ClusterDetector, error) {
	if err := provider.EnsureContext("cluster environment detector", stack.ContextCluster, opts.InCluster); err != nil {
		return nil, err
	}
	client := opts.Client
	if client == nil {
		client = kube.InClusterClient
	}
	return &ClusterDetector{client: client}, nil
}

// Environment resolves the active track: KSTACK_ENV, then the route
// selection, then the development default. A route that names no known
// track is malformed cluster state.
func (d *ClusterDetector) Environment(ctx context.Context, layer stack.Layer) (stack.Environment, error) {
	if env, ok, err := overrideEnvironment(); err != nil || ok {
		return env, err
	}

	route, source, err := d.route(ctx, layer)
	if err != nil {
		return "", err
	}
	env, err := route.Environment()
	if err != nil {
		return "", provider.ConfigurationError{Source: source, Message: "unroutable selection", Err: err}
	}
	return env, nil
}

// ActiveRoute reports the route selection the detector would follow, for
// diagnostics.
func (d *ClusterDetector) ActiveRoute(ctx context.Context, layer stack.Layer) (stack.Route, error) {
	route, _, err := d.route(ctx, layer)
	return route, err
}

// route returns the selection plus a source name for error reporting.
func (d *ClusterDetector) route(ctx context.Context, layer stack.Layer) (stack.Route, string, error) {
	if raw, ok := os.LookupEnv(EnvRoute); ok && strings.TrimSpace(raw) != "" {
		return stack.Route(strings.TrimSpace(raw)), EnvRoute, nil
	}

	source := fmt.Sprintf("configmap %s/%s", layer.Namespace(), RouteConfigMap)

	cs, err := d.clientsetOnce()
	if err != nil {
		return "", source, provider.ConfigurationError{Source: source, Message: "building cluster client", Err: err}
	}

	reqCtx, cancel := context.WithTimeout(ctx, kube.RequestTimeout)
	defer cancel()

	cm, err := cs.CoreV1().ConfigMaps(layer.Namespace()).Get(reqCtx, RouteConfigMap, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return stack.DefaultRoute, source, nil
	}
	if err != nil {
		return "", source, provider.ConfigurationError{Source: source, Message: "reading route selection", Err: err}
	}

	value := strings.TrimSpace(cm.Data[RouteKey])
	if value == "" {
		return stack.DefaultRoute, source, nil
	}
	return stack.Route(value), source, nil
}

func (d *ClusterDetector) clientsetOnce() (kubernetes.Interface, error) {
	d.once.Do(func() {
		d.clientset, d.clientErr = d.client()
	})
	return d.clientset, d.clientErr
}
