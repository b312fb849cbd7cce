package models

import "fmt"

// InvalidActionInputIdentifier identifies unresolvable action routes
const InvalidActionInputIdentifier = "craftcms.invalidActionInput"

// TemplateReference is a route literal found in a template
type TemplateReference struct {
	Route string // literal route string
	File  string // template path
	Line  int    // line number (1-based)
}

// Diagnostic is a single reported problem
type Diagnostic struct {
	Message    string `json:"message"`
	File       string `json:"file"`
	Line       int    `json:"line"`
	Identifier string `json:"identifier"`
	Route      string `json:"route"`
}

// NewInvalidActionInput creates the diagnostic for a reference that matches
// no route.
func NewInvalidActionInput(ref TemplateReference) Diagnostic {
	return Diagnostic{
		Message:    fmt.Sprintf(`Action route "%s" does not match any controller action.`, ref.Route),
		File:       ref.File,
		Line:       ref.Line,
		Identifier: InvalidActionInputIdentifier,
		Route:      ref.Route,
	}
}
