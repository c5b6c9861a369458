// Package environ provides an immutable environment value for child processes.
//
// Builds of independent variants run concurrently, so nothing in vbuild
// writes to the process-wide environment. Callers derive a copy with the
// overrides they need and hand it to the process they start.
package environ

import (
	"os"
	"sort"
	"strings"
)

// Env is an immutable set of environment variables.
// The zero value is an empty environment.
type Env struct {
	vars map[string]string
}

// FromOS snapshots the current process environment.
func FromOS() Env {
	return FromSlice(os.Environ())
}

// FromSlice parses KEY=VALUE entries. Entries without '=' are ignored and
// later duplicates win, matching how exec resolves them.
func FromSlice(entries []string) Env {
	vars := make(map[string]string, len(entries))

	for _, kv := range entries {
		if k, v, ok := strings.Cut(kv, "="); ok && k != "" {
			vars[k] = v
		}
	}

	return Env{vars: vars}
}

// FromMap copies m into a new Env.
func FromMap(m map[string]string) Env {
	vars := make(map[string]string, len(m))
	for k, v := range m {
		vars[k] = v
	}

	return Env{vars: vars}
}

// With returns a copy of e with key set to value. e is not modified.
func (e Env) With(key, value string) Env {
	vars := make(map[string]string, len(e.vars)+1)
	for k, v := range e.vars {
		vars[k] = v
	}

	vars[key] = value

	return Env{vars: vars}
}

// Without returns a copy of e with key removed.
func (e Env) Without(key string) Env {
	vars := make(map[string]string, len(e.vars))

	for k, v := range e.vars {
		if k != key {
			vars[k] = v
		}
	}

	return Env{vars: vars}
}

// Lookup returns the value of key and whether it is set.
func (e Env) Lookup(key string) (string, bool) {
	v, ok := e.vars[key]
	return v, ok
}

// Get returns the value of key or the empty string.
func (e Env) Get(key string) string {
	return e.vars[key]
}

// IsZero reports whether e is the zero value. An Env built by FromSlice or
// FromMap is never zero, even when it holds no variables.
func (e Env) IsZero() bool {
	return e.vars == nil
}

// Len returns the number of variables.
func (e Env) Len() int {
	return len(e.vars)
}

// Slice renders e as sorted KEY=VALUE entries suitable for exec.Cmd.Env.
func (e Env) Slice() []string {
	keys := make([]string, 0, len(e.vars))
	for k := range e.vars {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+e.vars[k])
	}

	return out
}
