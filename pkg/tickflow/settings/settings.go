// Package settings feeds configured initial values into a graph.
//
// A node that exposes a tunable parameter asks a Backend for it once, at
// construction time, passing the value it would use otherwise:
//
//	limit := settings.Resolve(backend, "watch.limit", 0.5)
//
// Resolution never fails. A missing key or a value that cannot be
// converted to the requested type yields the initial value.
package settings

import (
	"errors"
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/tickflow/pkg/tickflow/config"
	"github.com/randalmurphal/tickflow/pkg/tickflow/observability"
	"github.com/randalmurphal/tickflow/pkg/tickflow/port"
)

// ErrNotFound is returned by Lookup when the backend has no value for a key.
var ErrNotFound = errors.New("setting not found")

// Backend is a key-value source of settings.
type Backend interface {
	Lookup(key string) (any, bool)
}

// Const is a Backend without values: every setting keeps its initial value.
// Useful in tests.
type Const struct{}

// Lookup always reports a miss.
func (Const) Lookup(string) (any, bool) { return nil, false }

// ConfigBackend serves settings from a loaded configuration file. Keys are
// dotted paths into the document.
type ConfigBackend struct {
	cfg config.Config
}

// FromConfig wraps cfg as a Backend.
func FromConfig(cfg config.Config) ConfigBackend {
	return ConfigBackend{cfg: cfg}
}

// FromFile loads a YAML or JSON file as a Backend.
func FromFile(path string) (ConfigBackend, error) {
	cfg, err := config.FromFile(path)
	if err != nil {
		return ConfigBackend{}, fmt.Errorf("load settings: %w", err)
	}
	return ConfigBackend{cfg: cfg}, nil
}

// Lookup implements Backend.
func (b ConfigBackend) Lookup(key string) (any, bool) {
	return b.cfg.Lookup(key)
}

// Map is an in-memory Backend with flat keys.
type Map map[string]any

// Lookup implements Backend.
func (m Map) Lookup(key string) (any, bool) {
	v, ok := m[key]
	return v, ok
}

// Chain asks each backend in turn. The first one holding a value for the
// key wins; nil values and strings parsing to YAML null are skipped.
type Chain []Backend

// Lookup implements Backend.
func (c Chain) Lookup(key string) (any, bool) {
	for _, b := range c {
		if b == nil {
			continue
		}
		if v, ok := b.Lookup(key); ok && !blank(v) {
			return v, true
		}
	}
	return nil, false
}

var (
	_ Backend = Const{}
	_ Backend = ConfigBackend{}
	_ Backend = Map(nil)
	_ Backend = Chain(nil)
)

// Lookup reads key from b as a T. Values already of type T are returned
// as they are. A string is parsed as a YAML scalar, so "3" from an
// environment variable becomes an int; one holding no value ("", "null",
// "~", blanks or a comment) reports ErrNotFound. Anything else is re-decoded through
// YAML: an int can become a float64, a "5ms" string a time.Duration, and a
// nested map a struct with yaml tags.
func Lookup[T any](b Backend, key string) (T, error) {
	var out T
	raw, ok := b.Lookup(key)
	if !ok || raw == nil {
		return out, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if v, ok := raw.(T); ok {
		return v, nil
	}
	if str, ok := raw.(string); ok {
		var doc yaml.Node
		if err := yaml.Unmarshal([]byte(str), &doc); err == nil {
			if isNull(&doc) {
				return out, fmt.Errorf("%w: %s is empty", ErrNotFound, key)
			}
			var parsed T
			if err := doc.Decode(&parsed); err == nil {
				return parsed, nil
			}
		}
	}

	data, err := yaml.Marshal(raw)
	if err != nil {
		return out, fmt.Errorf("setting %s: encode %T: %w", key, raw, err)
	}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("setting %s: decode as %T: %w", key, out, err)
	}
	return out, nil
}

// blank reports whether raw carries no value.
func blank(raw any) bool {
	if raw == nil {
		return true
	}
	str, ok := raw.(string)
	if !ok {
		return false
	}
	var doc yaml.Node
	return yaml.Unmarshal([]byte(str), &doc) == nil && isNull(&doc)
}

// isNull reports whether a parsed YAML document holds no value.
func isNull(doc *yaml.Node) bool {
	if doc.Kind == yaml.DocumentNode {
		if len(doc.Content) == 0 {
			return true
		}
		doc = doc.Content[0]
	}
	return doc.Kind == 0 || (doc.Kind == yaml.ScalarNode && doc.ShortTag() == "!!null")
}

// Option configures resolution.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger that reports fallbacks.
// Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func buildOptions(opts []Option) options {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Resolve returns the value of key, or initial if the backend has none or
// it cannot be converted. A nil backend behaves like Const.
func Resolve[T any](b Backend, key string, initial T, opts ...Option) T {
	return New(b, key, initial, opts...).Get()
}

// Setting is a resolved configuration value. It is read once and never
// changes afterwards.
type Setting[T any] struct {
	key    string
	value  T
	loaded bool
}

// New resolves key against b, falling back to initial.
func New[T any](b Backend, key string, initial T, opts ...Option) *Setting[T] {
	s := &Setting[T]{key: key, value: initial}
	if b == nil {
		return s
	}
	v, err := Lookup[T](b, key)
	if err != nil {
		o := buildOptions(opts)
		if errors.Is(err, ErrNotFound) {
			err = nil
		}
		observability.LogSettingFallback(o.logger, key, err)
		return s
	}
	s.value = v
	s.loaded = true
	return s
}

// Key returns the setting's key.
func (s *Setting[T]) Key() string { return s.key }

// Get returns the value.
func (s *Setting[T]) Get() T { return s.value }

// Loaded reports whether the value came from the backend rather than the
// initial value.
func (s *Setting[T]) Loaded() bool { return s.loaded }

// Source exposes the value as a state-out port.
func (s *Setting[T]) Source() port.StateSource[T] {
	return port.NewStateSource(s.Get)
}
