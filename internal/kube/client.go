// Package kube holds the Kubernetes client plumbing the cluster-side
// providers share: in-cluster clientset construction, the pod's own
// namespace, and the bound timeout for API reads.
package kube

import (
	"fmt"
	"os"
	"strings"
	"time"

	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
)

// RequestTimeout bounds every cluster API read the providers make. A slow
// API server surfaces as an error instead of hanging resolution.
const RequestTimeout = 5 * time.Second

// ClientFunc produces the clientset a cluster provider talks through.
// Registries inject fake clientsets in tests.
type ClientFunc func() (kubernetes.Interface, error)

// InClusterClient builds a clientset from the pod's mounted service
// account. It fails on a workstation; callers guard context first.
func InClusterClient() (kubernetes.Interface, error) {
	config, err := rest.InClusterConfig()
	if err != nil {
		return nil, fmt.Errorf("building in-cluster config: %w", err)
	}
	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("building clientset: %w", err)
	}
	return clientset, nil
}

// namespaceFile carries the pod's own namespace. Tests may repoint it.
var namespaceFile = "/var/run/secrets/kubernetes.io/serviceaccount/namespace"

// CurrentNamespace reads the pod's namespace from the service-account
// mount.
func CurrentNamespace() (string, error) {
	data, err := os.ReadFile(namespaceFile)
	if err != nil {
		return "", fmt.Errorf("reading namespace from %s: %w", namespaceFile, err)
	}
	ns := strings.TrimSpace(string(data))
	if ns == "" {
		return "", fmt.Errorf("namespace file %s is empty", namespaceFile)
	}
	return ns, nil
}
