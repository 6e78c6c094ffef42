package secrets

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

// EnvName converts a secret key to its environment variable name:
// hyphens become underscores, the result is uppercased.
func EnvName(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

// Export sets each resolved key in the process environment, in sorted key
// order. With overrideExisting false a pre-existing variable keeps its
// value: the explicit environment wins. Returns the names actually set;
// exporting the same map twice is idempotent.
func Export(resolved Resolved, overrideExisting bool) ([]string, error) {
	keys := make([]string, 0, len(resolved))
	for key := range resolved {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var set []string
	for _, key := range keys {
		name := EnvName(key)
		if !overrideExisting {
			if _, exists := os.LookupEnv(name); exists {
				continue
			}
		}
		if err := os.Setenv(name, resolved[key]); err != nil {
			return set, fmt.Errorf("setting %s: %w", name, err)
		}
		set = append(set, name)
	}
	observeExport(len(set))
	return set, nil
}
