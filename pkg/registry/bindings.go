package registry

import (
	"github.com/systmms/kstack/internal/credentials"
	"github.com/systmms/kstack/internal/detect"
	"github.com/systmms/kstack/internal/origins"
)

// The default bindings. The first three select an arm by execution
// context; each concrete constructor re-checks the context itself before
// doing any I/O, so a miswired registry fails loudly instead of reading
// the wrong store.

func environmentDetectorFactory(r *Registry) (any, error) {
	if r.inCluster() {
		det, err := detect.NewClusterDetector(detect.ClusterOptions{Client: r.kubeClient, InCluster: r.inCluster})
		if err != nil {
			return nil, err
		}
		return det, nil
	}
	det, err := detect.NewLocalDetector(detect.LocalOptions{ProjectRoot: r.projectRoot, InCluster: r.inCluster})
	if err != nil {
		return nil, err
	}
	return det, nil
}

func secretOriginFactory(r *Registry) (any, error) {
	if r.inCluster() {
		origin, err := origins.NewClusterOrigin(origins.ClusterOriginOptions{
			Client:    r.kubeClient,
			InCluster: r.inCluster,
			Logger:    r.logger,
		})
		if err != nil {
			return nil, err
		}
		return origin, nil
	}
	origin, err := origins.NewVaultOrigin(origins.VaultOptions{
		Dir:         r.vaultDir,
		ProjectRoot: r.projectRoot,
		InCluster:   r.inCluster,
		Logger:      r.logger,
	})
	if err != nil {
		return nil, err
	}
	return origin, nil
}

func credentialSourceFactory(r *Registry) (any, error) {
	if r.inCluster() {
		source, err := credentials.NewClusterSource(credentials.ClusterOptions{Client: r.kubeClient, InCluster: r.inCluster})
		if err != nil {
			return nil, err
		}
		return source, nil
	}
	source, err := credentials.NewLocalSource(credentials.LocalOptions{
		Dir:         r.vaultDir,
		ProjectRoot: r.projectRoot,
		InCluster:   r.inCluster,
	})
	if err != nil {
		return nil, err
	}
	return source, nil
}

// sessionFactoryFactory depends on credential-source and obtains it back
// through the registry, so overrides and caching apply.
func sessionFactoryFactory(r *Registry) (any, error) {
	source, err := r.CredentialSource()
	if err != nil {
		return nil, err
	}
	return credentials.NewSessions(source, r.logger), nil
}
