package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/toyz/actioncheck/internal/models"
	"github.com/toyz/actioncheck/internal/utils"
)

// Reporter renders the diagnostics of a check run
type Reporter interface {
	Report(w io.Writer, report *Report) error
}

// ReporterFactory creates a reporter; useColors is only a hint
type ReporterFactory func(useColors bool) Reporter

var reporters = utils.NewRegistry[string, ReporterFactory]()

func init() {
	reporters.MustRegister("text", func(useColors bool) Reporter { return &TextReporter{UseColors: useColors} })
	reporters.MustRegister("json", func(bool) Reporter { return &JSONReporter{} })
	reporters.MustRegister("github", func(bool) Reporter { return &GitHubReporter{} })
}

// ReporterFormats lists the registered output formats
func ReporterFormats() []string {
	return utils.SortedKeys(reporters)
}

// NewReporter creates the reporter registered for format
func NewReporter(format string, useColors bool) (Reporter, error) {
	factory, ok := reporters.Get(format)
	if !ok {
		return nil, fmt.Errorf("unknown format %q (available: %s)", format, strings.Join(ReporterFormats(), ", "))
	}
	return factory(useColors), nil
}

// TextReporter prints one line per diagnostic followed by a summary
type TextReporter struct {
	UseColors bool
}

func (r *TextReporter) Report(w io.Writer, report *Report) error {
	for _, diag := range report.Diagnostics {
		_, err := fmt.Fprintf(w, "%s: %s %s\n",
			r.paint(fmt.Sprintf("%s:%d", diag.File, diag.Line), color.Bold),
			diag.Message,
			r.paint("["+diag.Identifier+"]", color.Faint),
		)
		if err != nil {
			return err
		}
	}

	s := report.Summary
	if len(report.Diagnostics) == 0 {
		_, err := fmt.Fprintf(w, "%s %d reference(s) in %d template(s) match %d route(s)\n",
			r.paint("OK", color.FgGreen, color.Bold), s.References, s.Templates, s.Routes)
		return err
	}
	_, err := fmt.Fprintf(w, "\n%s %d invalid action route(s) in %d template(s)\n",
		r.paint("Found", color.FgRed, color.Bold), len(report.Diagnostics), countFiles(report.Diagnostics))
	return err
}

func (r *TextReporter) paint(s string, attrs ...color.Attribute) string {
	if !r.UseColors {
		return s
	}
	c := color.New(attrs...)
	c.EnableColor()
	return c.Sprint(s)
}

func countFiles(diagnostics []models.Diagnostic) int {
	files := make(map[string]struct{})
	for _, diag := range diagnostics {
		files[diag.File] = struct{}{}
	}
	return len(files)
}

// JSONReporter writes the whole report as an indented JSON document
type JSONReporter struct{}

func (r *JSONReporter) Report(w io.Writer, report *Report) error {
	out := *report
	if out.Diagnostics == nil {
		out.Diagnostics = []models.Diagnostic{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(out)
}

// GitHubReporter writes workflow commands that annotate the offending lines
// in a GitHub Actions run.
type GitHubReporter struct{}

func (r *GitHubReporter) Report(w io.Writer, report *Report) error {
	for _, diag := range report.Diagnostics {
		_, err := fmt.Fprintf(w, "::error file=%s,line=%d,title=%s::%s\n",
			escapeProperty(diag.File),
			diag.Line,
			escapeProperty(diag.Identifier),
			escapeData(diag.Message),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

var (
	dataEscaper     = strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A")
	propertyEscaper = strings.NewReplacer("%", "%25", "\r", "%0D", "\n", "%0A", ":", "%3A", ",", "%2C")
)

func escapeData(s string) string {
	return dataEscaper.Replace(s)
}

func escapeProperty(s string) string {
	return propertyEscaper.Replace(s)
}
