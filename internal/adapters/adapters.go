// Package adapters recognizes eval-tool native JSON exports and
// normalizes them without user configuration. Detection walks a fixed
// priority order; the catch-all generic adapter runs last.
package adapters

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/evalgate/evalgate/pkg/types"
)

var (
	ErrNoAdapter      = errors.New("no adapter recognizes this payload")
	ErrUnknownAdapter = errors.New("unknown adapter")
	ErrShapeMismatch  = errors.New("payload does not match adapter shape")
)

type Adapter interface {
	Name() string
	// Supports is a cheap structural sniff. Parse revalidates and may
	// still fail on payloads Supports accepted.
	Supports(payload map[string]any) bool
	Parse(payload map[string]any) (types.NormalizedEvalResult, error)
}

// Registry is an ordered, immutable adapter list. Order is the
// detection contract: promptfoo, langsmith, openevals, generic.
type Registry struct {
	adapters []Adapter
}

func DefaultRegistry() *Registry {
	return &Registry{adapters: []Adapter{
		promptfooAdapter{},
		langsmithAdapter{},
		openEvalsAdapter{},
		genericAdapter{},
	}}
}

func (r *Registry) Names() []string {
	names := make([]string, len(r.adapters))
	for i, a := range r.adapters {
		names[i] = a.Name()
	}
	return names
}

// Detect returns the first adapter whose sniff accepts the payload.
func (r *Registry) Detect(payload map[string]any) (Adapter, bool) {
	for _, a := range r.adapters {
		if a.Supports(payload) {
			return a, true
		}
	}
	return nil, false
}

// Parse auto-detects and parses. Unrecognized payloads are a hard
// error; sources configured in a contract are the fallback for those.
func (r *Registry) Parse(payload map[string]any) (types.NormalizedEvalResult, error) {
	a, ok := r.Detect(payload)
	if !ok {
		return types.NormalizedEvalResult{}, fmt.Errorf(
			"%w (known adapters: %s)", ErrNoAdapter, strings.Join(r.Names(), ", "))
	}
	return a.Parse(payload)
}

// ParseWith forces a specific adapter by name.
func (r *Registry) ParseWith(name string, payload map[string]any) (types.NormalizedEvalResult, error) {
	for _, a := range r.adapters {
		if a.Name() == name {
			return a.Parse(payload)
		}
	}
	return types.NormalizedEvalResult{}, fmt.Errorf(
		"%w: %q (known adapters: %s)", ErrUnknownAdapter, name, strings.Join(r.Names(), ", "))
}

// ParseBytes decodes a JSON object payload and auto-detects.
func (r *Registry) ParseBytes(data []byte) (types.NormalizedEvalResult, error) {
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return types.NormalizedEvalResult{}, fmt.Errorf("adapter payload must be a JSON object: %w", err)
	}
	return r.Parse(payload)
}

func stringField(m map[string]any, key string) (string, bool) {
	s, ok := m[key].(string)
	return s, ok
}

func objectField(m map[string]any, key string) (map[string]any, bool) {
	o, ok := m[key].(map[string]any)
	return o, ok
}

func arrayField(m map[string]any, key string) ([]any, bool) {
	a, ok := m[key].([]any)
	return a, ok
}

func firstObject(arr []any) (map[string]any, bool) {
	if len(arr) == 0 {
		return nil, false
	}
	o, ok := arr[0].(map[string]any)
	return o, ok
}

func objectRows(arr []any) []map[string]any {
	rows := make([]map[string]any, 0, len(arr))
	for _, v := range arr {
		if o, ok := v.(map[string]any); ok {
			rows = append(rows, o)
		}
	}
	return rows
}
