package provider

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/systmms/kstack/pkg/stack"
)

// SharedWithKey is the bundle key that declares cross-layer sharing.
const SharedWithKey = "shared_with"

// metadataKeys are the recognized non-secret annotations a bundle may
// carry. They never appear in resolution output.
var metadataKeys = map[string]bool{
	"description": true,
	"created":     true,
	"status":      true,
	"migration":   true,
}

// IsMetadataKey reports whether key is a recognized non-secret annotation
// (including the sharing declaration itself).
func IsMetadataKey(key string) bool {
	return key == SharedWithKey || metadataKeys[key]
}

// SecretBundle is the secret payload stored for one (environment, layer)
// pair. Values holds the secret material; SharedWith lists the layers the
// owner has granted read access to; Meta holds recognized annotations.
// A bundle is immutable once read within a resolution call.
type SecretBundle struct {
	Values     map[string]string
	SharedWith []stack.Layer
	Meta       map[string]string
}

// NewBundle builds a bundle from a decoded flat mapping. Scalar values are
// stringified; the shared_with key becomes the SharedWith list; recognized
// metadata keys are segregated into Meta. Non-scalar values and unknown
// layer names in shared_with are malformed input.
func NewBundle(raw map[string]any) (SecretBundle, error) {
	bundle := SecretBundle{
		Values: make(map[string]string, len(raw)),
		Meta:   make(map[string]string),
	}

	for key, value := range raw {
		if key == SharedWithKey {
			layers, err := parseSharedWith(value)
			if err != nil {
				return SecretBundle{}, err
			}
			bundle.SharedWith = layers
			continue
		}

		s, err := stringifyValue(value)
		if err != nil {
			return SecretBundle{}, fmt.Errorf("key %q: %w", key, err)
		}
		if metadataKeys[key] {
			bundle.Meta[key] = s
			continue
		}
		bundle.Values[key] = s
	}

	return bundle, nil
}

// Empty reports whether the bundle carries no secret material and no
// sharing declaration.
func (b SecretBundle) Empty() bool {
	return len(b.Values) == 0 && len(b.SharedWith) == 0
}

// IsSharedWith reports whether the owner granted layer read access.
func (b SecretBundle) IsSharedWith(layer stack.Layer) bool {
	for _, l := range b.SharedWith {
		if l == layer {
			return true
		}
	}
	return false
}

// Merge overlays other onto b: other's values win collisions, sharing
// grants are unioned, and metadata is overlaid. Used by origins that fold
// several files into one bundle.
func (b *SecretBundle) Merge(other SecretBundle) {
	if b.Values == nil {
		b.Values = make(map[string]string, len(other.Values))
	}
	if b.Meta == nil {
		b.Meta = make(map[string]string, len(other.Meta))
	}
	for k, v := range other.Values {
		b.Values[k] = v
	}
	for k, v := range other.Meta {
		b.Meta[k] = v
	}
	for _, l := range other.SharedWith {
		if !b.IsSharedWith(l) {
			b.SharedWith = append(b.SharedWith, l)
		}
	}
	sort.Slice(b.SharedWith, func(i, j int) bool {
		return b.SharedWith[i].Number() < b.SharedWith[j].Number()
	})
}

// parseSharedWith accepts a YAML list of layer names, a single scalar, or
// a comma-separated string (the form Secret data keys use).
func parseSharedWith(value any) ([]stack.Layer, error) {
	var names []string

	switch v := value.(type) {
	case nil:
		return nil, nil
	case string:
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				names = append(names, part)
			}
		}
	case []any:
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("shared_with entries must be layer names, got %T", item)
			}
			names = append(names, s)
		}
	default:
		return nil, fmt.Errorf("shared_with must be a list of layer names, got %T", value)
	}

	layers := make([]stack.Layer, 0, len(names))
	for _, name := range names {
		layer, err := stack.ParseLayer(name)
		if err != nil {
			return nil, fmt.Errorf("shared_with: %w", err)
		}
		if !containsLayer(layers, layer) {
			layers = append(layers, layer)
		}
	}
	sort.Slice(layers, func(i, j int) bool { return layers[i].Number() < layers[j].Number() })
	return layers, nil
}

func containsLayer(layers []stack.Layer, layer stack.Layer) bool {
	for _, l := range layers {
		if l == layer {
			return true
		}
	}
	return false
}

// stringifyValue renders a decoded YAML scalar as its string form.
func stringifyValue(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("value must be a scalar, got %T", value)
	}
}
