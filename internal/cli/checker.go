package cli

import (
	"context"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/toyz/actioncheck/internal/errors"
	"github.com/toyz/actioncheck/internal/models"
	"github.com/toyz/actioncheck/internal/namespaces"
	"github.com/toyz/actioncheck/internal/routes"
	"github.com/toyz/actioncheck/internal/symbols"
	"github.com/toyz/actioncheck/internal/templates"
	"github.com/toyz/actioncheck/internal/utils"
)

// Analysis is everything known about a project before templates are read
type Analysis struct {
	Snapshot  *models.Snapshot
	Routes    *routes.Index
	Reflector *symbols.SourceReflector
	// WatchDirs are the directories whose changes invalidate the analysis
	WatchDirs []string
	Collected int
	Issues    *errors.MultipleErrors
}

// Summary holds the counters of a check run
type Summary struct {
	Handles     int           `json:"handles"`
	Controllers int           `json:"controllers"`
	Collected   int           `json:"collected"`
	Routes      int           `json:"routes"`
	Templates   int           `json:"templates"`
	References  int           `json:"references"`
	Diagnostics int           `json:"diagnostics"`
	Issues      int           `json:"issues"`
	Duration    time.Duration `json:"durationNs"`
}

// Report is the outcome of a check run
type Report struct {
	RunID       string              `json:"runId"`
	Project     string              `json:"project"`
	StartedAt   time.Time           `json:"startedAt"`
	Diagnostics []models.Diagnostic `json:"diagnostics"`
	Summary     Summary             `json:"summary"`

	// WatchDirs are the directories a watcher should observe for this project
	WatchDirs []string `json:"-"`
}

// HasDiagnostics reports whether the run found invalid references
func (r *Report) HasDiagnostics() bool {
	return len(r.Diagnostics) > 0
}

// Checker coordinates namespace resolution, controller discovery, route
// building and template scanning for one project.
type Checker struct {
	config      *Config
	diagnostics *utils.DiagnosticSystem
	reader      *utils.FileReader
}

// NewChecker creates a checker for a resolved configuration
func NewChecker(config *Config, diagnostics *utils.DiagnosticSystem) *Checker {
	if diagnostics == nil {
		diagnostics = utils.NewDiagnosticSystem(utils.DiagnosticSilent)
	}
	return &Checker{
		config:      config,
		diagnostics: diagnostics,
		reader:      utils.NewFileReader(),
	}
}

// Analyze builds the snapshot and the route index. Only an unreadable
// collected data file fails it; every other problem is recorded as an issue.
func (c *Checker) Analyze(ctx context.Context) (*Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	issues := errors.NewMultipleErrors()

	collected, err := LoadCollected(c.config.Collected)
	if err != nil {
		return nil, err
	}

	c.diagnostics.Verbose("Resolving module handles from %s", c.config.ConfigPath)
	autoload, root := c.loadAutoload(issues)
	reflector := symbols.NewSourceReflector(autoload)

	resolved := namespaces.NewResolver(reflector, c.diagnostics).Resolve(c.config.ConfigPath, c.config.HandleMap)
	issues.Merge(resolved.Issues)
	if !resolved.ConfigFound {
		c.diagnostics.Warn("Config file %s not found; only core and overridden handles are known", c.relative(c.config.ConfigPath))
	} else if resolved.Issues.HasCode(errors.SyntaxErrorCode) {
		c.diagnostics.Warn("Module configuration could not be parsed; run with --verbose for details")
	}

	c.diagnostics.Verbose("Discovering controllers for %d handle(s)", len(resolved.Handles))
	discovered := symbols.NewDiscoverer(reflector, c.diagnostics).Discover(resolved.Handles, autoload)
	issues.Merge(discovered.Issues)

	controllers := routes.Merge(collected, discovered.Controllers)
	snapshot := models.NewSnapshot(root, resolved.Handles, controllers, autoload)
	index := routes.Build(snapshot.Handles(), snapshot.Controllers(), reflector)
	c.diagnostics.Debug("Built %d route(s) from %d controller(s)", index.Len(), len(controllers))

	watch := append(slices.Clone(c.config.TemplatePaths), filepath.Dir(c.config.ConfigPath))
	watch = append(watch, discovered.Directories...)

	return &Analysis{
		Snapshot:  snapshot,
		Routes:    index,
		Reflector: reflector,
		WatchDirs: watch,
		Collected: len(collected),
		Issues:    issues,
	}, nil
}

// loadAutoload reads the autoload table of the project. The project root is
// derived from the config path when the config exists, and taken from the
// configured project directory otherwise.
func (c *Checker) loadAutoload(issues *errors.MultipleErrors) (models.AutoloadMap, string) {
	root := ""
	autoloadRoot := c.config.Project
	if utils.FileExists(c.config.ConfigPath) {
		root = namespaces.ProjectRootOf(c.config.ConfigPath)
		autoloadRoot = root
	}

	autoload, err := namespaces.LoadAutoload(autoloadRoot)
	if err != nil {
		if issue, ok := err.(errors.CheckError); ok {
			issues.Add(issue)
		}
		c.diagnostics.Verbose("Autoload table unavailable: %v", err)
	}
	return autoload, root
}

// Run analyzes the project and scans the templates
func (c *Checker) Run(ctx context.Context) (*Report, error) {
	started := time.Now()
	report := &Report{
		RunID:     uuid.NewString(),
		Project:   c.config.Project,
		StartedAt: started,
	}

	analysis, err := c.Analyze(ctx)
	if err != nil {
		return nil, err
	}

	c.diagnostics.Verbose("Scanning templates in %s", strings.Join(c.relativeAll(c.config.TemplatePaths), ", "))
	scanner := templates.NewScanner(
		templates.WithWorkers(c.config.Workers),
		templates.WithFileReader(c.reader),
		templates.WithDiagnostics(c.diagnostics),
	)
	scanned, err := scanner.Scan(ctx, c.config.TemplatePaths, analysis.Routes)
	if err != nil {
		return nil, err
	}
	analysis.Issues.Merge(scanned.Issues)
	for _, issue := range analysis.Issues.Errors {
		c.diagnostics.Verbose("%v", issue)
	}
	report.WatchDirs = analysis.WatchDirs

	report.Diagnostics = make([]models.Diagnostic, len(scanned.Diagnostics))
	for i, diag := range scanned.Diagnostics {
		diag.File = c.relative(diag.File)
		report.Diagnostics[i] = diag
	}
	templates.SortDiagnostics(report.Diagnostics)

	report.Summary = Summary{
		Handles:     len(analysis.Snapshot.Handles()),
		Controllers: len(analysis.Snapshot.Controllers()),
		Collected:   analysis.Collected,
		Routes:      analysis.Routes.Len(),
		Templates:   len(scanned.Files),
		References:  scanned.References,
		Diagnostics: len(report.Diagnostics),
		Issues:      analysis.Issues.Count(),
		Duration:    time.Since(started),
	}
	return report, nil
}

// Invalidate drops changed files from the template cache shared by runs
func (c *Checker) Invalidate(paths []string) {
	for _, path := range paths {
		c.reader.InvalidateFile(path)
	}
	c.diagnostics.Debug("%d template(s) still cached", c.reader.CachedFiles())
}

// Collect gathers controller actions from every PHP file under roots,
// resolving parents through the project's autoload table.
func (c *Checker) Collect(ctx context.Context, roots []string) (models.ControllerActions, error) {
	issues := errors.NewMultipleErrors()
	autoload, _ := c.loadAutoload(issues)

	collector := symbols.NewCollector(symbols.NewSourceReflector(autoload), c.diagnostics)
	result, err := collector.Collect(ctx, roots)
	if err != nil {
		return nil, utils.WrapProcessError("source roots", err)
	}
	return result.Controllers, nil
}

// relative shortens paths inside the project for display
func (c *Checker) relative(path string) string {
	rel, err := filepath.Rel(c.config.Project, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return rel
}

func (c *Checker) relativeAll(paths []string) []string {
	out := make([]string, len(paths))
	for i, path := range paths {
		out[i] = c.relative(path)
	}
	return out
}
