// Package namespaces resolves which PHP namespace holds the controllers of
// every module handle, and where the project's PSR-4 autoload roots are.
package namespaces

import (
	"path/filepath"
	"strings"

	"github.com/toyz/actioncheck/internal/errors"
	"github.com/toyz/actioncheck/internal/models"
	"github.com/toyz/actioncheck/internal/naming"
	"github.com/toyz/actioncheck/internal/utils"
)

// PluginsFile is the plugin registry written by the Craft composer plugin
const PluginsFile = "vendor/craftcms/plugins.php"

// ClassLocator reports whether a class can be loaded from the project
type ClassLocator interface {
	ClassExists(class string) bool
}

// Result is the outcome of a resolution
type Result struct {
	Handles     models.HandleMap
	ProjectRoot string // empty when the config file does not exist
	ConfigFound bool
	// Issues collects files that could not be read and definitions that
	// were skipped. They never affect the handle map beyond the skipped
	// entries.
	Issues *errors.MultipleErrors
}

// Resolver builds the handle to controller namespace map
type Resolver struct {
	locator     ClassLocator
	diagnostics *utils.DiagnosticSystem
}

// NewResolver creates a resolver. locator may be nil, in which case a plain
// module class name is only accepted when it contains a namespace separator.
func NewResolver(locator ClassLocator, diagnostics *utils.DiagnosticSystem) *Resolver {
	if diagnostics == nil {
		diagnostics = utils.NewDiagnosticSystem(utils.DiagnosticSilent)
	}
	return &Resolver{locator: locator, diagnostics: diagnostics}
}

// ProjectRootOf returns the directory two levels above an application config
// file: <root>/config/app.php -> <root>
func ProjectRootOf(configPath string) string {
	abs, err := filepath.Abs(configPath)
	if err != nil {
		abs = configPath
	}
	return filepath.Dir(filepath.Dir(abs))
}

// Resolve merges, in increasing precedence: the core framework entry, the
// modules of the config file, installed plugins and the overrides.
func (r *Resolver) Resolve(configPath string, overrides map[string]string) *Result {
	result := &Result{
		Handles: models.HandleMap{models.CoreHandle: models.CoreNamespace},
		Issues:  errors.NewMultipleErrors(),
	}

	if utils.FileExists(configPath) {
		result.ConfigFound = true
		result.ProjectRoot = ProjectRootOf(configPath)

		r.parseConfig(configPath, result)

		pluginsPath := filepath.Join(result.ProjectRoot, filepath.FromSlash(PluginsFile))
		if utils.FileExists(pluginsPath) {
			r.parsePlugins(pluginsPath, result)
		}
	} else {
		r.diagnostics.Verbose("Config file %s not found, using core controllers only", configPath)
	}

	for handle, namespace := range overrides {
		result.Handles[handle] = naming.TrimNamespace(namespace)
	}

	for _, issue := range result.Issues.Errors {
		r.diagnostics.Verbose("%s", issue.Error())
	}
	return result
}

func (r *Resolver) parseConfig(configPath string, result *Result) {
	config, err := LoadConfigFile(configPath)
	if err != nil {
		result.Issues.Add(errors.WrapParseError(configPath, err))
		return
	}

	modules, ok := modulesOf(config)
	if !ok {
		r.diagnostics.Debug("No modules declared in %s", configPath)
		return
	}

	definitions, ok := entries(modules)
	if !ok {
		result.Issues.Add(errors.ResolutionError("modules", configPath, "not a list of module definitions"))
		return
	}

	for _, def := range definitions {
		class, ok := r.moduleClass(def.value)
		if !ok {
			result.Issues.Add(errors.ResolutionError("module", def.key, "definition does not name a class"))
			continue
		}
		result.Handles[def.key] = naming.ControllerNamespace(class)
		r.diagnostics.Debug("Module %s => %s", def.key, class)
	}
}

// moduleClass resolves a module definition: a class name string, or a
// definition array with a string "class" element.
func (r *Resolver) moduleClass(definition any) (string, bool) {
	if class, ok := definition.(string); ok {
		if strings.Contains(class, naming.NamespaceSeparator) {
			return class, true
		}
		if r.locator != nil && r.locator.ClassExists(class) {
			return class, true
		}
		return "", false
	}

	return lookupString(definition, "class")
}

func (r *Resolver) parsePlugins(pluginsPath string, result *Result) {
	registry, err := LoadConfigFile(pluginsPath)
	if err != nil {
		result.Issues.Add(errors.WrapParseError(pluginsPath, err))
		return
	}

	plugins, ok := entries(registry)
	if !ok {
		result.Issues.Add(errors.ResolutionError("plugin registry", pluginsPath, "not a list of plugins"))
		return
	}

	for _, plugin := range plugins {
		handle, hasHandle := lookupString(plugin.value, "handle")
		class, hasClass := lookupString(plugin.value, "class")
		if !hasHandle || !hasClass {
			result.Issues.Add(errors.ResolutionError("plugin", plugin.key, "missing handle or class"))
			continue
		}
		result.Handles[handle] = naming.ControllerNamespace(class)
		r.diagnostics.Debug("Plugin %s => %s", handle, class)
	}
}
