// Package templates finds action route references in Twig templates and
// reports the ones no controller action serves.
package templates

import (
	"cmp"
	"context"
	"regexp"
	"runtime"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/toyz/actioncheck/internal/errors"
	"github.com/toyz/actioncheck/internal/models"
	"github.com/toyz/actioncheck/internal/utils"
)

// TemplateExtension is the extension of the files that are scanned
const TemplateExtension = ".twig"

// actionInputPattern matches actionInput('route') and actionInput("route")
var actionInputPattern = regexp.MustCompile(`actionInput\(\s*(?:'([^']+)'|"([^"]+)")`)

// RouteSet is the view of a route index the scanner needs
type RouteSet interface {
	Contains(route string) bool
}

// Result is the outcome of a scan
type Result struct {
	Diagnostics []models.Diagnostic
	// Files lists the templates that were read, sorted
	Files      []string
	References int
	Issues     *errors.MultipleErrors
}

// Scanner checks template references against a route set
type Scanner struct {
	workers     int
	reader      *utils.FileReader
	diagnostics *utils.DiagnosticSystem
}

// ScannerOption configures a Scanner
type ScannerOption func(*Scanner)

// WithWorkers bounds the number of files read concurrently
func WithWorkers(n int) ScannerOption {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithFileReader shares a file reader, and its cache, with the scanner
func WithFileReader(reader *utils.FileReader) ScannerOption {
	return func(s *Scanner) {
		if reader != nil {
			s.reader = reader
		}
	}
}

// WithDiagnostics sets where scan progress is logged
func WithDiagnostics(diagnostics *utils.DiagnosticSystem) ScannerOption {
	return func(s *Scanner) {
		if diagnostics != nil {
			s.diagnostics = diagnostics
		}
	}
}

// NewScanner creates a scanner
func NewScanner(opts ...ScannerOption) *Scanner {
	s := &Scanner{
		workers:     runtime.GOMAXPROCS(0),
		reader:      utils.NewFileReader(),
		diagnostics: utils.NewDiagnosticSystem(utils.DiagnosticSilent),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan reads every template under roots and reports each reference that
// routes does not contain. Missing roots and unreadable files are skipped.
// The diagnostics are sorted by file, line and route.
func (s *Scanner) Scan(ctx context.Context, roots []string, routes RouteSet) (*Result, error) {
	result := &Result{Issues: errors.NewMultipleErrors()}

	for _, root := range roots {
		if !utils.IsDir(root) {
			s.diagnostics.Verbose("Template root %s does not exist", root)
			continue
		}
		files, err := utils.WalkFiles(root, utils.FileWalkOptions{
			FileFilter: utils.ExtensionFilter(TemplateExtension),
			SkipErrors: true,
		})
		if err != nil {
			result.Issues.Add(errors.WrapFileSystemError("walk", root, err))
			continue
		}
		result.Files = append(result.Files, files...)
	}
	slices.Sort(result.Files)
	result.Files = slices.Compact(result.Files)

	// every file owns its slot, so workers never share a write target
	found := make([][]models.TemplateReference, len(result.Files))
	readErrs := make([]error, len(result.Files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, file := range result.Files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			content, err := s.reader.ReadFile(file)
			if err != nil {
				readErrs[i] = err
				return nil
			}
			found[i] = FindReferences(file, content)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, refs := range found {
		if readErrs[i] != nil {
			result.Issues.Add(errors.WrapFileSystemError("read", result.Files[i], readErrs[i]))
			continue
		}
		result.References += len(refs)
		for _, ref := range refs {
			if !routes.Contains(ref.Route) {
				result.Diagnostics = append(result.Diagnostics, models.NewInvalidActionInput(ref))
			}
		}
	}

	SortDiagnostics(result.Diagnostics)
	for _, issue := range result.Issues.Errors {
		s.diagnostics.Verbose("%s", issue.Error())
	}
	s.diagnostics.Debug("Scanned %d template(s), %d reference(s)", len(result.Files), result.References)
	return result, nil
}

// FindReferences extracts the action routes referenced in a template. Lines
// are 1-based.
func FindReferences(file, content string) []models.TemplateReference {
	var refs []models.TemplateReference
	for _, match := range actionInputPattern.FindAllStringSubmatchIndex(content, -1) {
		// group 1 is the single-quoted literal, group 2 the double-quoted one
		start, end := match[2], match[3]
		if start < 0 {
			start, end = match[4], match[5]
		}
		refs = append(refs, models.TemplateReference{
			Route: content[start:end],
			File:  file,
			Line:  1 + strings.Count(content[:start], "\n"),
		})
	}
	return refs
}

// SortDiagnostics orders diagnostics by file, line and route
func SortDiagnostics(diagnostics []models.Diagnostic) {
	slices.SortStableFunc(diagnostics, func(a, b models.Diagnostic) int {
		return cmp.Or(
			cmp.Compare(a.File, b.File),
			cmp.Compare(a.Line, b.Line),
			cmp.Compare(a.Route, b.Route),
		)
	})
}
