package threshold

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrUnknownPolicy is returned by Lookup for names nobody registered.
var ErrUnknownPolicy = errors.New("threshold: unknown policy")

// DefaultPolicy is the name Lookup resolves for an empty name.
const DefaultPolicy = "magnitude"

var (
	registryMu sync.RWMutex
	registry   = map[string]Policy{
		"magnitude":  Magnitude{},
		"percentile": Percentile{},
		"topk":       TopK{},
		"positive":   Signed{},
		"negative":   Signed{Negative: true},
	}
)

// Register makes p available under name. Registering an existing name
// replaces the previous policy.
func Register(name string, p Policy) {
	name = normalize(name)
	if name == "" || p == nil {
		return
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = p
}

// Lookup returns the policy registered under name (case-insensitive).
// An empty name resolves to DefaultPolicy.
func Lookup(name string) (Policy, error) {
	name = normalize(name)
	if name == "" {
		name = DefaultPolicy
	}
	registryMu.RLock()
	defer registryMu.RUnlock()
	p, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownPolicy, name, strings.Join(namesLocked(), ", "))
	}
	return p, nil
}

// Names returns the registered policy names in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return namesLocked()
}

func namesLocked() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
