package stack

import (
	"fmt"
	"sort"
	"strings"
)

// Environment is a named deployment track. Layers resolve their environment
// at runtime; in practice all layers of one installation share a track.
type Environment string

const (
	EnvDevelopment    Environment = "dev"
	EnvTesting        Environment = "test"
	EnvStaging        Environment = "staging"
	EnvProduction     Environment = "prod"
	EnvScratch        Environment = "scratch"
	EnvDataCollection Environment = "data-collection"
)

// DefaultEnvironment is what detection falls back to when no source
// declares a track.
const DefaultEnvironment = EnvDevelopment

// environmentAliases maps long spellings onto canonical values.
var environmentAliases = map[string]Environment{
	"development": EnvDevelopment,
	"testing":     EnvTesting,
	"production":  EnvProduction,
}

// Environments returns all tracks in a stable order.
func Environments() []Environment {
	return []Environment{EnvDevelopment, EnvTesting, EnvStaging, EnvProduction, EnvScratch, EnvDataCollection}
}

func (e Environment) String() string {
	return string(e)
}

// Valid reports whether e is a defined track.
func (e Environment) Valid() bool {
	for _, known := range Environments() {
		if e == known {
			return true
		}
	}
	return false
}

// ParseEnvironment resolves a track from its canonical value or a long
// alias (development, testing, production). Case-insensitive.
func ParseEnvironment(s string) (Environment, error) {
	v := strings.ToLower(strings.TrimSpace(s))

	if env := Environment(v); env.Valid() {
		return env, nil
	}
	if env, ok := environmentAliases[v]; ok {
		return env, nil
	}

	valid := make([]string, 0, len(Environments()))
	for _, env := range Environments() {
		valid = append(valid, string(env))
	}
	sort.Strings(valid)
	return "", fmt.Errorf("invalid environment %q: valid environments are %s", s, strings.Join(valid, ", "))
}
