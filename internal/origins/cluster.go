package origins

import (
	"context"
	"fmt"
	"sync"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/systmms/kstack/internal/kube"
	"github.com/systmms/kstack/internal/logging"
	"github.com/systmms/kstack/pkg/provider"
	"github.com/systmms/kstack/pkg/stack"
)

// SecretName returns the Secret object carrying a layer's bundle.
func SecretName(layer stack.Layer) string {
	return layer.Short() + "-secrets"
}

// ClusterOrigin reads bundles from Secret objects in each layer's
// namespace. RBAC is the cluster's enforcement of sharing: a denied read
// of another layer's Secret is the same as that layer never sharing.
type ClusterOrigin struct {
	client kube.ClientFunc
	logger *logging.Logger

	once      sync.Once
	clientset kubernetes.Interface
	clientErr error
}

// ClusterOriginOptions configure construction. The zero value works inside
// a pod.
type ClusterOriginOptions struct {
	Client    kube.ClientFunc
	InCluster func() bool
	Logger    *logging.Logger
}

// NewClusterOrigin guards the execution context before anything else.
func NewClusterOrigin(opts ClusterOriginOptions) (*ClusterOrigin, error) {
	if err := provider.EnsureContext("cluster secret origin", stack.ContextCluster, opts.InCluster); err != nil {
		return nil, err
	}
	client := opts.Client
	if client == nil {
		client = kube.InClusterClient
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.New(false, true)
	}
	return &ClusterOrigin{client: client, logger: logger}, nil
}

// Read loads the bundle stored for a layer. The cluster keeps one live
// bundle per layer (the route already selected the track), so the
// environment argument only satisfies the origin contract. Missing and
// RBAC-denied Secrets yield an empty bundle.
func (o *ClusterOrigin) Read(ctx context.Context, env stack.Environment, layer stack.Layer) (provider.SecretBundle, error) {
	cs, err := o.clientsetOnce()
	if err != nil {
		return provider.SecretBundle{}, provider.ConfigurationError{Source: "in-cluster API", Message: "building cluster client", Err: err}
	}

	name := SecretName(layer)
	source := fmt.Sprintf("secret %s/%s", layer.Namespace(), name)

	reqCtx, cancel := context.WithTimeout(ctx, kube.RequestTimeout)
	defer cancel()

	sec, err := cs.CoreV1().Secrets(layer.Namespace()).Get(reqCtx, name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) || apierrors.IsForbidden(err) {
		o.logger.Debug("no readable %s: %v", source, err)
		return provider.SecretBundle{}, nil
	}
	if err != nil {
		return provider.SecretBundle{}, provider.ConfigurationError{Source: source, Message: "reading secret", Err: err}
	}

	raw := make(map[string]any, len(sec.Data))
	for key, value := range sec.Data {
		raw[key] = string(value)
	}
	bundle, err := provider.NewBundle(raw)
	if err != nil {
		return provider.SecretBundle{}, provider.ConfigurationError{Source: source, Message: "invalid secret bundle", Err: err}
	}
	return bundle, nil
}

func (o *ClusterOrigin) clientsetOnce() (kubernetes.Interface, error) {
	o.once.Do(func() {
		o.clientset, o.clientErr = o.client()
	})
	return o.clientset, o.clientErr
}
