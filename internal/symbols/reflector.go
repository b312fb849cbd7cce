// Package symbols finds controller classes and their inline actions by
// reading PHP sources through the project's PSR-4 autoload table.
package symbols

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/toyz/actioncheck/internal/errors"
	"github.com/toyz/actioncheck/internal/models"
	"github.com/toyz/actioncheck/internal/naming"
	"github.com/toyz/actioncheck/internal/php"
	"github.com/toyz/actioncheck/internal/utils"
)

// SourceReflector reflects classes by locating and parsing their source file.
// Parsed files are cached until they change on disk. It is safe for
// concurrent use.
type SourceReflector struct {
	autoload models.AutoloadMap
	prefixes []string // longest first
	reader   *utils.FileReader
	parsed   *utils.Cache[string, []*php.ClassDecl]
}

// NewSourceReflector creates a reflector over an autoload table
func NewSourceReflector(autoload models.AutoloadMap) *SourceReflector {
	prefixes := autoload.Prefixes()
	slices.SortStableFunc(prefixes, func(a, b string) int {
		return len(b) - len(a)
	})

	return &SourceReflector{
		autoload: autoload,
		prefixes: prefixes,
		reader:   utils.NewFileReader(),
		parsed:   utils.NewCache[string, []*php.ClassDecl](),
	}
}

// Reflect loads a class by fully qualified name
func (r *SourceReflector) Reflect(class string) (models.ClassReflection, error) {
	decl, err := r.load(class)
	if err != nil {
		return nil, err
	}
	return r.ReflectDeclaration(decl), nil
}

// ReflectDeclaration wraps an already parsed declaration; its parents and
// traits are still loaded through the autoload table.
func (r *SourceReflector) ReflectDeclaration(decl *php.ClassDecl) models.ClassReflection {
	return &classReflection{reflector: r, decl: decl}
}

// ClassExists reports whether class can be located and parsed
func (r *SourceReflector) ClassExists(class string) bool {
	_, err := r.load(class)
	return err == nil
}

// FileOf returns the first existing PSR-4 candidate file for class
func (r *SourceReflector) FileOf(class string) (string, bool) {
	class = strings.TrimPrefix(class, naming.NamespaceSeparator)

	for _, prefix := range r.prefixes {
		if !strings.HasPrefix(class, prefix) {
			continue
		}
		relative := strings.ReplaceAll(class[len(prefix):], naming.NamespaceSeparator, string(filepath.Separator)) + ".php"
		for _, dir := range r.autoload[prefix] {
			path := filepath.Join(dir, relative)
			if utils.FileExists(path) {
				return path, true
			}
		}
	}
	return "", false
}

// ParseFile returns the class declarations of a file, using the cache
func (r *SourceReflector) ParseFile(path string) ([]*php.ClassDecl, error) {
	return r.parsed.GetOrLoadFile(path, path, func() ([]*php.ClassDecl, error) {
		src, err := r.reader.ReadFile(path)
		if err != nil {
			return nil, errors.WrapFileSystemError("read", path, err)
		}
		decls, err := php.ParseClasses(path, src)
		if err != nil {
			return nil, errors.WrapParseError(path, err)
		}
		return decls, nil
	})
}

func (r *SourceReflector) load(class string) (*php.ClassDecl, error) {
	class = strings.TrimPrefix(class, naming.NamespaceSeparator)

	path, ok := r.FileOf(class)
	if !ok {
		return nil, errors.ReflectionError(class, "no autoload entry resolves to a file")
	}

	decls, err := r.ParseFile(path)
	if err != nil {
		return nil, errors.WrapReflectionError(class, err)
	}
	for _, decl := range decls {
		if strings.EqualFold(decl.Name, class) {
			return decl, nil
		}
	}
	return nil, errors.ReflectionError(class, "not declared in "+path).
		WithLocation(errors.SourceLocation{File: path})
}

// classReflection implements models.ClassReflection over a declaration
type classReflection struct {
	reflector *SourceReflector
	decl      *php.ClassDecl
}

func (c *classReflection) Name() string {
	return c.decl.Name
}

// IsAbstract is true for abstract classes, interfaces and traits
func (c *classReflection) IsAbstract() bool {
	return c.decl.Abstract || c.decl.Kind == "interface" || c.decl.Kind == "trait"
}

// IsSubclassOf walks parents and interfaces. A supertype that cannot be
// loaded ends that branch of the walk.
func (c *classReflection) IsSubclassOf(base string) bool {
	base = strings.TrimPrefix(base, naming.NamespaceSeparator)
	visited := map[string]bool{strings.ToLower(c.decl.Name): true}

	var walk func(decl *php.ClassDecl) bool
	walk = func(decl *php.ClassDecl) bool {
		supers := decl.Interfaces
		if decl.Parent != "" {
			supers = append([]string{decl.Parent}, supers...)
		}

		for _, super := range supers {
			if strings.EqualFold(super, base) {
				return true
			}
			key := strings.ToLower(super)
			if visited[key] {
				continue
			}
			visited[key] = true

			parent, err := c.reflector.load(super)
			if err != nil {
				continue
			}
			if walk(parent) {
				return true
			}
		}
		return false
	}

	return walk(c.decl)
}

// PublicMethodNames lists public methods declared by the class, its traits
// and its parents, in that order. A name is reported once, with the first
// declaration deciding its visibility.
func (c *classReflection) PublicMethodNames() []string {
	var names []string
	seen := make(map[string]bool)

	c.walkHierarchy(func(decl *php.ClassDecl) bool {
		for _, method := range decl.Methods {
			key := strings.ToLower(method.Name)
			if seen[key] {
				continue
			}
			seen[key] = true
			if method.Visibility == "public" {
				names = append(names, method.Name)
			}
		}
		return false
	})
	return names
}

// DefaultValueOf returns the declared default of a property. A property
// declared without an initializer has a nil default.
func (c *classReflection) DefaultValueOf(property string) (any, bool) {
	var (
		value any
		found bool
	)
	c.walkHierarchy(func(decl *php.ClassDecl) bool {
		prop, ok := decl.Properties[property]
		if !ok {
			return false
		}
		value, found = prop.Default, true
		return true
	})
	return value, found
}

// walkHierarchy visits the class, then its traits (recursively), then its
// parent chain the same way, until visit returns true. Unloadable traits and
// parents are skipped; every class is visited at most once.
func (c *classReflection) walkHierarchy(visit func(decl *php.ClassDecl) bool) {
	visited := make(map[string]bool)

	var walkTraits func(decl *php.ClassDecl) bool
	walkTraits = func(decl *php.ClassDecl) bool {
		for _, name := range decl.Traits {
			key := strings.ToLower(name)
			if visited[key] {
				continue
			}
			visited[key] = true

			trait, err := c.reflector.load(name)
			if err != nil {
				continue
			}
			if visit(trait) || walkTraits(trait) {
				return true
			}
		}
		return false
	}

	for decl := c.decl; decl != nil; {
		visited[strings.ToLower(decl.Name)] = true
		if visit(decl) || walkTraits(decl) {
			return
		}

		if decl.Parent == "" || visited[strings.ToLower(decl.Parent)] {
			return
		}
		parent, err := c.reflector.load(decl.Parent)
		if err != nil {
			return
		}
		decl = parent
	}
}
