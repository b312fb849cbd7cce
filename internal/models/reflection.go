package models

// ClassReflection exposes what route building needs to know about a class
type ClassReflection interface {
	// Name returns the fully qualified class name
	Name() string
	IsAbstract() bool
	// IsSubclassOf reports whether base appears anywhere in the parent chain
	IsSubclassOf(base string) bool
	// PublicMethodNames lists own, trait and inherited public methods
	PublicMethodNames() []string
	// DefaultValueOf returns the declared default of a property, searching
	// parents when the class does not declare it.
	DefaultValueOf(property string) (any, bool)
}

// Reflector loads class reflections by fully qualified name
type Reflector interface {
	Reflect(class string) (ClassReflection, error)
}
