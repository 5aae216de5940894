package vergen

import (
	"context"
	"fmt"
	"os"
	"sort"
)

// Entries collects what providers produce during one run.
type Entries struct {
	Env            map[Key]string
	Custom         map[string]string
	RerunIfChanged []string
	Warnings       []string
}

// NewEntries returns empty entries.
func NewEntries() *Entries {
	return &Entries{Env: make(map[Key]string), Custom: make(map[string]string)}
}

// AddEntry records value for key, replacing any previous value.
func (e *Entries) AddEntry(key Key, value string) {
	e.Env[key] = value
}

// AddCustomEntry records a value outside the built-in key set.
func (e *Entries) AddCustomEntry(key, value string) {
	e.Custom[key] = value
}

// CustomKeys returns the custom keys sorted.
func (e *Entries) CustomKeys() []string {
	keys := make([]string, 0, len(e.Custom))
	for k := range e.Custom {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// AddDefaultEntry records the default for key: the value of an environment
// variable named like the key when present, the placeholder otherwise. Both
// cases leave a warning.
func (e *Entries) AddDefaultEntry(key Key) {
	if value, ok := os.LookupEnv(key.Name()); ok {
		e.AddEntry(key, value)
		e.AddWarning("%s overridden", key.Name())
		return
	}
	e.AddEntry(key, Placeholder)
	e.AddWarning("%s set to default", key.Name())
}

// AddOverride records the environment override for key when one is set and
// reports whether it did.
func (e *Entries) AddOverride(key Key) bool {
	value, ok := os.LookupEnv(key.Name())
	if ok {
		e.AddEntry(key, value)
	}
	return ok
}

// AddWarning appends a formatted warning.
func (e *Entries) AddWarning(format string, args ...any) {
	e.Warnings = append(e.Warnings, fmt.Sprintf(format, args...))
}

// AddRerunIfChanged appends a path whose change should trigger a rebuild.
func (e *Entries) AddRerunIfChanged(path string) {
	e.RerunIfChanged = append(e.RerunIfChanged, path)
}

// ResetSideEffects drops collected warnings and rerun paths. Values are kept;
// they are overwritten by whatever is re-populated.
func (e *Entries) ResetSideEffects() {
	e.Warnings = e.Warnings[:0]
	e.RerunIfChanged = e.RerunIfChanged[:0]
}

// Keys returns the recorded keys in emission order.
func (e *Entries) Keys() []Key {
	keys := make([]Key, 0, len(e.Env))
	for k := range e.Env {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// CountIdempotent counts the values equal to the placeholder.
func (e *Entries) CountIdempotent() int {
	return countPlaceholders(e.Env) + countPlaceholders(e.Custom)
}

func countPlaceholders[K comparable](m map[K]string) int {
	n := 0
	for _, v := range m {
		if v == Placeholder {
			n++
		}
	}
	return n
}

// DefaultConfig is handed to a provider whose normal path failed.
type DefaultConfig struct {
	FailOnError bool
	Idempotent  bool
	Err         error
}

// Check returns the original failure when the run must fail, nil when the
// provider should fall back to default entries.
func (c DefaultConfig) Check() error {
	if !c.FailOnError {
		return nil
	}
	if c.Err == nil {
		return fmt.Errorf("provider failed")
	}
	return c.Err
}

// Provider gathers one family of keys.
type Provider interface {
	// AddEntries records real values, overrides or placeholders for every
	// enabled key. Any error switches the emitter to AddDefaultEntries.
	AddEntries(ctx context.Context, idempotent bool, e *Entries) error
	// AddDefaultEntries records default entries for every enabled key, or
	// returns an error when cfg requires failing.
	AddDefaultEntries(cfg DefaultConfig, e *Entries) error
}

// CustomProvider gathers keys outside the built-in set. Values go into env;
// warnings and rerun paths go into e.
type CustomProvider interface {
	AddCalculatedEntries(ctx context.Context, idempotent bool, env map[string]string, e *Entries) error
	AddDefaultEntries(cfg DefaultConfig, env map[string]string, e *Entries) error
}
