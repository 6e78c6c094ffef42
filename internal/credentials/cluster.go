package credentials

import (
	"context"
	"fmt"
	"sync"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/systmms/kstack/internal/kube"
	"github.com/systmms/kstack/pkg/provider"
	"github.com/systmms/kstack/pkg/stack"
)

// CredentialsSecretName returns the Secret carrying one service's
// credentials in a layer's namespace.
func CredentialsSecretName(service string, layer stack.Layer) string {
	return fmt.Sprintf("%s-%s-credentials", layer.Short(), service)
}

// ClusterSource issues credentials from per-service Secret objects.
type ClusterSource struct {
	client kube.ClientFunc

	once      sync.Once
	clientset kubernetes.Interface
	clientErr error
}

// ClusterOptions configure construction. The zero value works inside a
// pod.
type ClusterOptions struct {
	Client    kube.ClientFunc
	InCluster func() bool
}

// NewClusterSource guards the execution context before anything else.
func NewClusterSource(opts ClusterOptions) (*ClusterSource, error) {
	if err := provider.EnsureContext("cluster credential source", stack.ContextCluster, opts.InCluster); err != nil {
		return nil, err
	}
	client := opts.Client
	if client == nil {
		client = kube.InClusterClient
	}
	return &ClusterSource{client: client}, nil
}

// Credentials reads the Secret <layerN>-<service>-credentials. Unlike
// bundle reads, denial here is an error: a component asking for
// credentials cannot run without them.
func (s *ClusterSource) Credentials(ctx context.Context, service string, layer stack.Layer, env stack.Environment) (provider.Credentials, error) {
	cs, err := s.clientsetOnce()
	if err != nil {
		return provider.Credentials{}, provider.ConfigurationError{Source: "in-cluster API", Message: "building cluster client", Err: err}
	}

	name := CredentialsSecretName(service, layer)
	source := fmt.Sprintf("secret %s/%s", layer.Namespace(), name)

	reqCtx, cancel := context.WithTimeout(ctx, kube.RequestTimeout)
	defer cancel()

	sec, err := cs.CoreV1().Secrets(layer.Namespace()).Get(reqCtx, name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return provider.Credentials{}, provider.ServiceNotFoundError{
			Service:     service,
			Layer:       layer,
			Environment: env,
			Hint:        "expected " + source,
		}
	}
	if err != nil {
		return provider.Credentials{}, provider.ConfigurationError{Source: source, Message: "reading credentials", Err: err}
	}
	if len(sec.Data) == 0 {
		return provider.Credentials{}, provider.ConfigurationError{Source: source, Message: "credentials secret is empty"}
	}

	str := func(key string) string { return string(sec.Data[key]) }
	return provider.Credentials{
		AccessKeyID:     str(keyAccessKeyID),
		SecretAccessKey: str(keySecretAccessKey),
		SessionToken:    str(keySessionToken),
		Region:          str(keyRegion),
		EndpointURL:     str(keyEndpointURL),
	}, nil
}

func (s *ClusterSource) clientsetOnce() (kubernetes.Interface, error) {
	s.once.Do(func() {
		s.clientset, s.clientErr = s.client()
	})
	return s.clientset, s.clientErr
}
