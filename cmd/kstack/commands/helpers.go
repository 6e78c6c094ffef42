package commands

import (
	"fmt"
	"sort"
	"strings"

	kerrors "github.com/systmms/kstack/internal/errors"
	"github.com/systmms/kstack/pkg/secrets"
	"github.com/systmms/kstack/pkg/stack"
)

// selectLayers expands a --layer flag value into the layers a command
// operates on. Empty and "all" select every layer.
func selectLayers(arg string) ([]stack.Layer, error) {
	if arg == "" || strings.EqualFold(arg, "all") {
		return stack.Layers(), nil
	}

	layer, err := stack.ParseLayer(arg)
	if err != nil {
		return nil, kerrors.UserError{
			Message:    fmt.Sprintf("Invalid layer %q", arg),
			Suggestion: "Use a layer number 0-3, a short name like layer1, or 'all'",
			Err:        err,
		}
	}
	return []stack.Layer{layer}, nil
}

// requireLayer parses the --layer flag for commands that operate on
// exactly one layer.
func requireLayer(arg string) (stack.Layer, error) {
	layer, err := stack.ParseLayer(arg)
	if err != nil {
		return 0, kerrors.UserError{
			Message:    fmt.Sprintf("Invalid layer %q", arg),
			Suggestion: "Use a layer number 0-3 or a short name like layer1",
			Err:        err,
		}
	}
	return layer, nil
}

// sortedKeys returns the resolved secret keys in display order.
func sortedKeys(resolved secrets.Resolved) []string {
	keys := make([]string, 0, len(resolved))
	for key := range resolved {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
