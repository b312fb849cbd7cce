package cli

import (
	stderrors "errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/fatih/color"

	"github.com/toyz/actioncheck/internal/errors"
)

// ErrorReporter explains a fatal error to the user, with the location,
// context and suggestions a CheckError carries.
type ErrorReporter struct {
	out       io.Writer
	verbose   bool
	useColors bool
}

// NewErrorReporter creates an error reporter writing to out
func NewErrorReporter(out io.Writer, verbose, useColors bool) *ErrorReporter {
	return &ErrorReporter{out: out, verbose: verbose, useColors: useColors}
}

// ReportError writes err and everything known about it
func (r *ErrorReporter) ReportError(err error) {
	var checkErr errors.CheckError
	if !stderrors.As(err, &checkErr) {
		fmt.Fprintf(r.out, "%s %s\n", r.paint(color.FgRed, "Error:"), err.Error())
		return
	}

	title := errorTitle(checkErr.ErrorCode())
	fmt.Fprintf(r.out, "%s %s\n", r.paint(color.FgRed, title+":"), err.Error())

	if loc := checkErr.Location(); !loc.IsEmpty() {
		fmt.Fprintf(r.out, "   Location: %s\n", loc.String())
	}

	if r.verbose {
		r.printContext(checkErr.Context())
		r.printChain(err)
	}

	if suggestions := checkErr.Suggestions(); len(suggestions) > 0 {
		fmt.Fprintf(r.out, "   Suggestions:\n")
		for i, suggestion := range suggestions {
			fmt.Fprintf(r.out, "     %d. %s\n", i+1, suggestion)
		}
	}
}

func errorTitle(code errors.ErrorCode) string {
	switch code {
	case errors.ConfigurationErrorCode:
		return "Configuration Error"
	case errors.FileSystemErrorCode:
		return "File System Error"
	case errors.SyntaxErrorCode:
		return "Syntax Error"
	case errors.ResolutionErrorCode:
		return "Resolution Error"
	case errors.ReflectionErrorCode:
		return "Reflection Error"
	default:
		return "Error"
	}
}

// printContext prints context entries in key order
func (r *ErrorReporter) printContext(context map[string]interface{}) {
	if len(context) == 0 {
		return
	}

	keys := make([]string, 0, len(context))
	for key := range context {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	fmt.Fprintf(r.out, "   Context:\n")
	for _, key := range keys {
		fmt.Fprintf(r.out, "     %s: %v\n", formatContextKey(key), context[key])
	}
}

// formatContextKey converts snake_case keys to Title Case
func formatContextKey(key string) string {
	parts := strings.Split(key, "_")
	for i, part := range parts {
		if len(part) > 0 {
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, " ")
}

// printChain prints every wrapped cause
func (r *ErrorReporter) printChain(err error) {
	level := 1
	for cause := stderrors.Unwrap(err); cause != nil; cause = stderrors.Unwrap(cause) {
		if level == 1 {
			fmt.Fprintf(r.out, "   Error chain:\n")
		}
		fmt.Fprintf(r.out, "     %d. %s\n", level, cause.Error())
		level++
	}
}

func (r *ErrorReporter) paint(attr color.Attribute, s string) string {
	if !r.useColors {
		return s
	}
	c := color.New(attr, color.Bold)
	c.EnableColor()
	return c.Sprint(s)
}
