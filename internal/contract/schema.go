package contract

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed contract.schema.json
var schemaJSON []byte

// Issue is a single problem found in a contract document, addressed by a
// JSON-pointer style path into the document.
type Issue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// SchemaError carries every schema violation found in a contract document
// rather than aborting on the first one.
type SchemaError struct {
	Issues []Issue
}

func (e *SchemaError) Error() string {
	if len(e.Issues) == 0 {
		return "contract failed schema validation"
	}
	first := e.Issues[0]
	return fmt.Sprintf("contract failed schema validation: %d issue(s); first: %s: %s",
		len(e.Issues), first.Path, first.Message)
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error

	schemaPrinter = message.NewPrinter(language.English)
)

func compiledSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		var doc any
		if err := json.Unmarshal(schemaJSON, &doc); err != nil {
			compileErr = fmt.Errorf("parse embedded contract schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("contract.schema.json", doc); err != nil {
			compileErr = fmt.Errorf("register contract schema: %w", err)
			return
		}
		compiled, compileErr = c.Compile("contract.schema.json")
	})
	return compiled, compileErr
}

// validateDocument checks a decoded contract document against the embedded
// JSON schema. It returns a *SchemaError listing every violation.
func validateDocument(doc any) error {
	sch, err := compiledSchema()
	if err != nil {
		return err
	}
	if err := sch.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			return &SchemaError{Issues: flattenValidation(ve)}
		}
		return &SchemaError{Issues: []Issue{{Path: "/", Message: err.Error()}}}
	}
	return nil
}

// flattenValidation walks the validation error tree and collects its leaves.
// Interior nodes only restate which subschema failed; the leaves carry the
// actionable message.
func flattenValidation(ve *jsonschema.ValidationError) []Issue {
	var issues []Issue
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			issues = append(issues, Issue{
				Path:    pointerPath(e.InstanceLocation),
				Message: e.ErrorKind.LocalizedString(schemaPrinter),
				Code:    keywordCode(e.ErrorKind.KeywordPath()),
			})
			return
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(ve)
	return issues
}

func pointerPath(loc []string) string {
	if len(loc) == 0 {
		return "/"
	}
	return "/" + strings.Join(loc, "/")
}

func keywordCode(kw []string) string {
	if len(kw) == 0 {
		return ""
	}
	return kw[len(kw)-1]
}
