package symbols

import (
	"path/filepath"
	"strings"

	"github.com/toyz/actioncheck/internal/errors"
	"github.com/toyz/actioncheck/internal/models"
	"github.com/toyz/actioncheck/internal/naming"
	"github.com/toyz/actioncheck/internal/utils"
)

// ControllerFileSuffix is the file name suffix of controller classes
const ControllerFileSuffix = naming.ControllerSuffix + ".php"

// Result is the outcome of a discovery run
type Result struct {
	Controllers models.ControllerActions
	// Directories lists every controller directory that was listed
	Directories []string
	Issues      *errors.MultipleErrors
}

// Discoverer finds controllers under the namespaces of a handle map
type Discoverer struct {
	reflector   models.Reflector
	diagnostics *utils.DiagnosticSystem
}

// NewDiscoverer creates a discoverer reflecting candidates with reflector
func NewDiscoverer(reflector models.Reflector, diagnostics *utils.DiagnosticSystem) *Discoverer {
	if diagnostics == nil {
		diagnostics = utils.NewDiagnosticSystem(utils.DiagnosticSilent)
	}
	return &Discoverer{reflector: reflector, diagnostics: diagnostics}
}

// Discover lists <Name>Controller.php files in the directories that the
// autoload table maps every handle's namespace to, and keeps the concrete
// web controllers that declare at least one action.
func (d *Discoverer) Discover(handles models.HandleMap, autoload models.AutoloadMap) *Result {
	result := &Result{
		Controllers: models.ControllerActions{},
		Issues:      errors.NewMultipleErrors(),
	}

	for _, handle := range handles.Handles() {
		namespace := naming.TrimNamespace(handles[handle])
		if namespace == "" {
			continue
		}

		for _, dir := range NamespaceDirectories(namespace, autoload) {
			result.Directories = append(result.Directories, dir)
			d.discoverDirectory(namespace, dir, result)
		}
	}

	for _, issue := range result.Issues.Errors {
		d.diagnostics.Verbose("%s", issue.Error())
	}
	return result
}

func (d *Discoverer) discoverDirectory(namespace, dir string, result *Result) {
	files, err := utils.ListFiles(dir, utils.SuffixFilter(ControllerFileSuffix))
	if err != nil {
		result.Issues.Add(errors.WrapFileSystemError("list", dir, err))
		return
	}

	for _, file := range files {
		class := namespace + naming.NamespaceSeparator + strings.TrimSuffix(filepath.Base(file), ".php")
		if _, done := result.Controllers[class]; done {
			continue
		}

		reflection, err := d.reflector.Reflect(class)
		if err != nil {
			issue, ok := err.(errors.CheckError)
			if !ok {
				issue = errors.WrapReflectionError(class, err).
					WithLocation(errors.SourceLocation{File: file})
			}
			result.Issues.Add(issue)
			continue
		}

		actions, reason := ControllerActionsOf(reflection)
		if reason != "" {
			d.diagnostics.Debug("Skipping %s: %s", class, reason)
			continue
		}
		result.Controllers[class] = actions
		d.diagnostics.Debug("Controller %s: %d action(s)", class, len(actions))
	}
}

// NamespaceDirectories maps a namespace to the existing directories that
// may hold its classes: for every autoload prefix the namespace falls under,
// the rest of the namespace is appended to each of the prefix's base
// directories.
func NamespaceDirectories(namespace string, autoload models.AutoloadMap) []string {
	qualified := strings.Trim(namespace, naming.NamespaceSeparator) + naming.NamespaceSeparator

	var dirs []string
	for _, prefix := range autoload.Prefixes() {
		if !strings.HasPrefix(qualified, prefix) {
			continue
		}
		relative := strings.TrimSuffix(qualified[len(prefix):], naming.NamespaceSeparator)
		relative = strings.ReplaceAll(relative, naming.NamespaceSeparator, string(filepath.Separator))

		for _, base := range autoload[prefix] {
			dir := filepath.Join(base, relative)
			if utils.IsDir(dir) {
				dirs = append(dirs, dir)
			}
		}
	}
	return dirs
}

// ControllerActionsOf returns the inline action methods of a concrete web
// controller. A non-empty reason explains why the class is not one.
func ControllerActionsOf(reflection models.ClassReflection) ([]string, string) {
	if reflection.IsAbstract() {
		return nil, "abstract"
	}
	if !reflection.IsSubclassOf(models.BaseControllerClass) {
		return nil, "not a subclass of " + models.BaseControllerClass
	}

	var actions []string
	for _, method := range reflection.PublicMethodNames() {
		if naming.QualifiesAsAction(method) {
			actions = append(actions, method)
		}
	}
	if len(actions) == 0 {
		return nil, "no action methods"
	}
	return actions, ""
}
