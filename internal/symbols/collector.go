package symbols

import (
	"context"

	"github.com/toyz/actioncheck/internal/errors"
	"github.com/toyz/actioncheck/internal/models"
	"github.com/toyz/actioncheck/internal/utils"
)

// Collector gathers controller actions from every PHP file under a set of
// source roots, regardless of the handle map. Its output has the shape of
// the collected data files the checker accepts.
type Collector struct {
	reflector   *SourceReflector
	diagnostics *utils.DiagnosticSystem
}

// NewCollector creates a collector. Parents and traits of the classes found
// are resolved through reflector.
func NewCollector(reflector *SourceReflector, diagnostics *utils.DiagnosticSystem) *Collector {
	if diagnostics == nil {
		diagnostics = utils.NewDiagnosticSystem(utils.DiagnosticSilent)
	}
	return &Collector{reflector: reflector, diagnostics: diagnostics}
}

// Collect walks roots for .php files, skipping dependency and VCS
// directories. Missing roots are ignored.
func (c *Collector) Collect(ctx context.Context, roots []string) (*Result, error) {
	result := &Result{
		Controllers: models.ControllerActions{},
		Issues:      errors.NewMultipleErrors(),
	}

	for _, root := range roots {
		if !utils.IsDir(root) {
			c.diagnostics.Verbose("Source root %s does not exist", root)
			continue
		}
		result.Directories = append(result.Directories, root)

		files, err := utils.WalkFiles(root, utils.FileWalkOptions{
			FileFilter:      utils.ExtensionFilter(".php"),
			DirectoryFilter: utils.DefaultDirectoryFilter(),
			SkipErrors:      true,
		})
		if err != nil {
			result.Issues.Add(errors.WrapFileSystemError("walk", root, err))
			continue
		}

		for _, file := range files {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			c.collectFile(file, result)
		}
	}

	for _, issue := range result.Issues.Errors {
		c.diagnostics.Verbose("%s", issue.Error())
	}
	return result, nil
}

func (c *Collector) collectFile(file string, result *Result) {
	decls, err := c.reflector.ParseFile(file)
	if err != nil {
		if issue, ok := err.(errors.CheckError); ok {
			result.Issues.Add(issue)
		}
		return
	}

	for _, decl := range decls {
		if decl.Kind != "class" {
			continue
		}
		actions, reason := ControllerActionsOf(c.reflector.ReflectDeclaration(decl))
		if reason != "" {
			continue
		}
		if _, exists := result.Controllers[decl.Name]; !exists {
			result.Controllers[decl.Name] = actions
			c.diagnostics.Debug("Collected %s from %s", decl.Name, file)
		}
	}
}
