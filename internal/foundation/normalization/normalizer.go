// Package normalization maps user supplied strings (flags, YAML values) onto
// typed enum values, case-insensitively and with alias support.
package normalization

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownValue is wrapped by every lookup failure.
var ErrUnknownValue = errors.New("unknown value")

// Normalizer provides type-safe string-to-enum normalization with error handling.
type Normalizer[T comparable] struct {
	name        string
	validValues map[string]T
	validKeys   []string // cached for error messages
}

// NewNormalizer creates a normalizer named after the enum it parses (used in errors).
// Keys are normalized with Clean, so "SVG" and " svg " register the same entry.
func NewNormalizer[T comparable](name string, values map[string]T) *Normalizer[T] {
	normalized := make(map[string]T, len(values))
	validKeys := make([]string, 0, len(values))

	for k, v := range values {
		key := Clean(k)
		normalized[key] = v
		validKeys = append(validKeys, key)
	}
	sort.Strings(validKeys)

	return &Normalizer[T]{
		name:        name,
		validValues: normalized,
		validKeys:   validKeys,
	}
}

// Lookup returns the value registered for raw, if any.
func (n *Normalizer[T]) Lookup(raw string) (T, bool) {
	v, ok := n.validValues[Clean(raw)]
	return v, ok
}

// Normalize converts raw to the enum type or returns an error wrapping ErrUnknownValue.
func (n *Normalizer[T]) Normalize(raw string) (T, error) {
	if v, ok := n.Lookup(raw); ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("%w for %s: %q (valid: %s)", ErrUnknownValue, n.name, raw, strings.Join(n.validKeys, ", "))
}

// NormalizeOr returns fallback when raw is empty and otherwise behaves like Normalize.
func (n *Normalizer[T]) NormalizeOr(raw string, fallback T) (T, error) {
	if Clean(raw) == "" {
		return fallback, nil
	}
	return n.Normalize(raw)
}

// ValidKeys returns all accepted keys, sorted.
func (n *Normalizer[T]) ValidKeys() []string {
	result := make([]string, len(n.validKeys))
	copy(result, n.validKeys)
	return result
}

// Clean is the normalization applied to both registered keys and lookups.
func Clean(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
