// Package contract loads, validates, and inspects eval contracts.
//
// Contracts are authored in YAML or JSON with snake_case or camelCase keys.
// Loading normalizes keys, checks the document against an embedded JSON
// schema, and decodes it into types.EvalContract. Schema problems are
// reported as a list of issues rather than a single opaque error.
package contract

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"

	"github.com/evalgate/evalgate/internal/record"
	"github.com/evalgate/evalgate/pkg/types"
)

// Loaded pairs a parsed contract with the digest of the exact bytes it was
// loaded from, so decisions can be pinned to a specific contract version.
type Loaded struct {
	Contract types.EvalContract
	Digest   string
	Raw      []byte
}

// Load reads and parses a contract file.
func Load(path string) (*Loaded, error) {
	// #nosec G304 -- path comes from operator-supplied CLI arguments.
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read contract: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return &Loaded{Contract: c, Digest: record.DigestWithPrefix(data), Raw: data}, nil
}

// Parse decodes a contract document. YAML is a superset of JSON here, so a
// single decode path handles both formats.
func Parse(data []byte) (types.EvalContract, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return types.EvalContract{}, fmt.Errorf("parse contract: %w", err)
	}
	if doc == nil {
		return types.EvalContract{}, fmt.Errorf("parse contract: empty document")
	}
	doc = camelizeKeys(doc)

	if m, ok := doc.(map[string]any); ok {
		if v, present := m["version"]; present {
			if n, isNum := types.Number(v); !isNum || n != 1 {
				return types.EvalContract{}, fmt.Errorf("%w: %v", ErrUnsupportedVersion, v)
			}
		}
	}

	jsonBytes, err := json.Marshal(doc)
	if err != nil {
		return types.EvalContract{}, fmt.Errorf("encode contract document: %w", err)
	}
	var jsonDoc any
	if err := json.Unmarshal(jsonBytes, &jsonDoc); err != nil {
		return types.EvalContract{}, fmt.Errorf("decode contract document: %w", err)
	}
	if err := validateDocument(jsonDoc); err != nil {
		return types.EvalContract{}, err
	}

	var c types.EvalContract
	if err := json.Unmarshal(jsonBytes, &c); err != nil {
		return types.EvalContract{}, fmt.Errorf("decode contract: %w", err)
	}
	if c.RequiredEvals == nil && c.Policy == nil {
		return types.EvalContract{}, ErrNoGateDefinition
	}
	if c.Environment == "" {
		c.Environment = "production"
	}
	return c, nil
}

// camelizeKeys rewrites every map key in the document from snake_case to
// camelCase. The rewrite is mechanical: each underscore followed by a
// character is replaced by that character uppercased. Values are never
// touched, so enum strings like "require_approval" survive intact.
func camelizeKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[camelize(k)] = camelizeKeys(val)
		}
		return out
	case []any:
		for i := range t {
			t[i] = camelizeKeys(t[i])
		}
		return t
	}
	return v
}

func camelize(key string) string {
	if !strings.Contains(key, "_") {
		return key
	}
	runes := []rune(key)
	var b strings.Builder
	for i := 0; i < len(runes); i++ {
		if runes[i] == '_' && i+1 < len(runes) {
			i++
			b.WriteRune(unicode.ToUpper(runes[i]))
			continue
		}
		b.WriteRune(runes[i])
	}
	return b.String()
}
