package php

import "strings"

const nsSep = `\`

// Scope tracks the namespace and `use` imports that apply to class names
// written in a file.
type Scope struct {
	Namespace string
	imports   map[string]string
}

// NewScope creates an empty global scope
func NewScope() *Scope {
	return &Scope{imports: make(map[string]string)}
}

// SetNamespace switches to a new namespace; imports do not carry over
func (s *Scope) SetNamespace(namespace string) {
	s.Namespace = strings.Trim(namespace, nsSep)
	s.imports = make(map[string]string)
}

// Import registers `use name as alias`. An empty alias imports under the
// last segment of name.
func (s *Scope) Import(name, alias string) {
	name = strings.TrimPrefix(name, nsSep)
	if alias == "" {
		alias = lastSegment(name)
	}
	// PHP class names are case-insensitive
	s.imports[strings.ToLower(alias)] = name
}

// Resolve turns a class name as written in source into a fully qualified
// name without a leading separator.
func (s *Scope) Resolve(name string) string {
	if strings.HasPrefix(name, nsSep) {
		return name[1:]
	}

	first, rest, qualified := strings.Cut(name, nsSep)
	if strings.EqualFold(first, "namespace") && qualified {
		return s.qualify(rest)
	}
	if target, ok := s.imports[strings.ToLower(first)]; ok {
		if qualified {
			return target + nsSep + rest
		}
		return target
	}
	return s.qualify(name)
}

func (s *Scope) qualify(name string) string {
	if s.Namespace == "" {
		return name
	}
	return s.Namespace + nsSep + name
}

func lastSegment(name string) string {
	if pos := strings.LastIndex(name, nsSep); pos >= 0 {
		return name[pos+1:]
	}
	return name
}

// isSpecialClass reports names that refer to the enclosing class and cannot
// be resolved outside of it.
func isSpecialClass(name string) bool {
	switch strings.ToLower(name) {
	case "self", "static", "parent":
		return true
	}
	return false
}
