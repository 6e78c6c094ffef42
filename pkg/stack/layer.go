// Package stack defines the core identifiers of the kstack topology:
// infrastructure layers, deployment environments, routing profiles, and the
// execution context a process runs in. Everything here is a compile-time
// constant table; no I/O happens in this package except the context probe.
package stack

import (
	"fmt"
	"strings"
)

// Layer identifies one of the four infrastructure tiers. Lower numbers sit
// closer to the user; layer 3 is foundation infrastructure.
type Layer int

const (
	Layer0Applications Layer = iota
	Layer1TenantInfra
	Layer2GlobalServices
	Layer3GlobalInfra
)

var layerNames = [...]string{
	"layer-0-applications",
	"layer-1-tenant-infra",
	"layer-2-global-services",
	"layer-3-global-infra",
}

var layerDisplayNames = [...]string{
	"Layer 0: Applications",
	"Layer 1: Tenant Infrastructure",
	"Layer 2: Global Services",
	"Layer 3: Global Infrastructure",
}

// Layers returns all layers in increasing number order.
func Layers() []Layer {
	return []Layer{Layer0Applications, Layer1TenantInfra, Layer2GlobalServices, Layer3GlobalInfra}
}

// Valid reports whether l is one of the four defined layers.
func (l Layer) Valid() bool {
	return l >= Layer0Applications && l <= Layer3GlobalInfra
}

// Number returns the ordinal layer number (0-3).
func (l Layer) Number() int {
	return int(l)
}

// String returns the canonical layer name, e.g. "layer-2-global-services".
func (l Layer) String() string {
	if !l.Valid() {
		return fmt.Sprintf("layer(%d)", int(l))
	}
	return layerNames[l]
}

// Short returns the compact alias used in vault paths and Secret names,
// e.g. "layer2".
func (l Layer) Short() string {
	return fmt.Sprintf("layer%d", int(l))
}

// Namespace returns the Kubernetes namespace for the layer. Namespaces are
// named after the canonical layer names.
func (l Layer) Namespace() string {
	return l.String()
}

// DisplayName returns the human-readable name, e.g. "Layer 2: Global Services".
func (l Layer) DisplayName() string {
	if !l.Valid() {
		return l.String()
	}
	return layerDisplayNames[l]
}

// ParseLayer resolves a layer from any accepted spelling: the short alias
// ("layer2"), the bare number ("2"), or the canonical name
// ("layer-2-global-services"). Matching is case-insensitive.
func ParseLayer(s string) (Layer, error) {
	v := strings.ToLower(strings.TrimSpace(s))

	if len(v) == 1 && v[0] >= '0' && v[0] <= '3' {
		return Layer(v[0] - '0'), nil
	}
	for i, name := range layerNames {
		if v == name {
			return Layer(i), nil
		}
	}
	for _, l := range Layers() {
		if v == l.Short() {
			return l, nil
		}
	}
	return 0, fmt.Errorf("invalid layer %q: use layer0-layer3, a number 0-3, or a full name like %q", s, layerNames[0])
}
