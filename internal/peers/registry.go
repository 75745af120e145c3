// Package peers tracks the set of known peer node addresses.
package peers

import (
	"errors"
	"net/url"
	"sort"
	"strings"
)

// ErrInvalidAddress is returned when a peer address has no host component.
var ErrInvalidAddress = errors.New("peer address has no host component")

// Registry is the set of canonical host:port peer addresses. It is not
// internally locked; the node context object serializes access to it.
type Registry struct {
	set map[string]struct{}
}

func NewRegistry() *Registry {
	return &Registry{set: make(map[string]struct{})}
}

// Normalize parses a peer address into its canonical host:port form. Both
// "http://host:port" and bare "host:port" normalize to the same entry.
func Normalize(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidAddress
	}
	if !strings.Contains(raw, "//") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", ErrInvalidAddress
	}
	return u.Host, nil
}

// Register adds a peer address. Insertion is idempotent; the canonical form
// is returned.
func (r *Registry) Register(raw string) (string, error) {
	addr, err := Normalize(raw)
	if err != nil {
		return "", err
	}
	r.set[addr] = struct{}{}
	return addr, nil
}

// List returns a sorted snapshot of the registered addresses.
func (r *Registry) List() []string {
	out := make([]string, 0, len(r.set))
	for addr := range r.set {
		out = append(out, addr)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of registered peers.
func (r *Registry) Len() int {
	return len(r.set)
}
