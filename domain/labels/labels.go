// Package labels holds the versioned raw-to-canonical department label maps.
package labels

import (
	"fmt"
	"sort"
	"strings"
)

// FallbackPolicy decides what an unmapped raw label becomes
type FallbackPolicy int

const (
	// Passthrough keeps the raw label unchanged
	Passthrough FallbackPolicy = iota
	// Sentinel replaces the raw label with the map's sentinel
	Sentinel
)

// DefaultSentinel is the canonical label for unmapped raw labels under Sentinel
const DefaultSentinel = "Other"

// String returns the policy name used in config files
func (p FallbackPolicy) String() string {
	if p == Sentinel {
		return "sentinel"
	}
	return "passthrough"
}

// ParseFallbackPolicy parses "passthrough" or "sentinel"
func ParseFallbackPolicy(s string) (FallbackPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "passthrough":
		return Passthrough, nil
	case "sentinel":
		return Sentinel, nil
	default:
		return Passthrough, fmt.Errorf("unknown fallback policy %q", s)
	}
}

// Map is an exact-match lookup from raw label to canonical label.
// Keys are case and whitespace sensitive. A Map is immutable.
type Map struct {
	version  string
	entries  map[string]string
	fallback FallbackPolicy
	sentinel string
}

// New builds a map; entries are copied
func New(version string, entries map[string]string, fallback FallbackPolicy) *Map {
	m := &Map{
		version:  version,
		entries:  make(map[string]string, len(entries)),
		fallback: fallback,
		sentinel: DefaultSentinel,
	}
	for k, v := range entries {
		m.entries[k] = v
	}
	return m
}

// WithSentinel returns a copy using a different sentinel label
func (m *Map) WithSentinel(sentinel string) *Map {
	out := New(m.version, m.entries, m.fallback)
	out.sentinel = sentinel
	return out
}

// WithFallback returns a copy using a different fallback policy
func (m *Map) WithFallback(p FallbackPolicy) *Map {
	out := New(m.version, m.entries, p)
	out.sentinel = m.sentinel
	return out
}

// Version identifies the map revision
func (m *Map) Version() string { return m.version }

// Fallback returns the fallback policy
func (m *Map) Fallback() FallbackPolicy { return m.fallback }

// Sentinel returns the label used for unmapped values under Sentinel
func (m *Map) Sentinel() string { return m.sentinel }

// Len returns the number of entries
func (m *Map) Len() int { return len(m.entries) }

// Lookup returns the canonical label for raw, if mapped
func (m *Map) Lookup(raw string) (string, bool) {
	v, ok := m.entries[raw]
	return v, ok
}

// Canonical maps raw through the table, applying the fallback policy
func (m *Map) Canonical(raw string) string {
	if v, ok := m.entries[raw]; ok {
		return v
	}
	if m.fallback == Sentinel {
		return m.sentinel
	}
	return raw
}

// Keys returns the raw labels in sorted order
func (m *Map) Keys() []string {
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Categories returns the distinct canonical labels in sorted order
func (m *Map) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, v := range m.entries {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}
