package stack

import "fmt"

// Route is the routing profile name the cluster stores to mark which
// deployment track is live. Route names are the long environment spellings.
type Route string

// DefaultRoute is assumed when the cluster stores no route selection.
const DefaultRoute = Route("development")

// Environment maps the route onto its deployment track.
func (r Route) Environment() (Environment, error) {
	env, err := ParseEnvironment(string(r))
	if err != nil {
		return "", fmt.Errorf("unknown route %q: %w", string(r), err)
	}
	return env, nil
}
