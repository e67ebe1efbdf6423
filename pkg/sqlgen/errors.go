package sqlgen

import (
	"errors"
	"fmt"
)

// ErrNotFound reports a template name or section absent from the registry.
var ErrNotFound = errors.New("not found in registry")

// TemplateError wraps a structural failure (lexical error, grammar
// violation, unknown name) with the template it occurred in. Evaluation
// degradations never produce a TemplateError; they log a warning and
// render as empty text.
type TemplateError struct {
	Name    string
	Section string
	Err     error
}

func (e *TemplateError) Error() string {
	if e.Section == "" {
		return fmt.Sprintf("template %q: %v", e.Name, e.Err)
	}
	return fmt.Sprintf("template %q section %q: %v", e.Name, e.Section, e.Err)
}

func (e *TemplateError) Unwrap() error {
	return e.Err
}
