// Package naming converts PHP class and method names into the kebab-case ids
// the Yii router uses for controllers and actions.
package naming

import (
	"strings"
	"unicode"
)

const (
	// Separator joins words of a canonical id
	Separator = '-'

	// ControllerSuffix is stripped from controller class names
	ControllerSuffix = "Controller"

	// ActionPrefix marks a public method as an inline action
	ActionPrefix = "action"

	// NamespaceSeparator joins PHP namespace segments
	NamespaceSeparator = `\`
)

// Normalize converts an identifier such as "SaveEntry" into "save-entry".
//
// A separator is inserted before an upper-case letter that starts an
// upper-case run, and before the last letter of a run when a lower-case
// letter follows it ("CSPSources" -> "csp-sources"). The result is lower-cased
// and stripped of leading and trailing separators. Capitals without a
// lower-case form, such as "ℂ", are treated as lower-case letters, which keeps
// Normalize idempotent.
func Normalize(input string) string {
	if input == "" {
		return ""
	}

	runes := []rune(input)
	var b strings.Builder
	b.Grow(len(input) + 4)

	for i, r := range runes {
		if isUpper(r) && startsWord(runes, i) {
			b.WriteRune(Separator)
		}
		b.WriteRune(r)
	}

	return strings.Trim(strings.ToLower(b.String()), string(Separator))
}

// startsWord reports whether the upper-case rune at i begins a new word
func startsWord(runes []rune, i int) bool {
	if i == 0 || !isUpper(runes[i-1]) {
		return true
	}
	// acronym boundary: "SPSources" splits before the final S
	return i+1 < len(runes) && unicode.IsLower(runes[i+1])
}

// isUpper reports upper-case letters that lower-casing changes
func isUpper(r rune) bool {
	return unicode.IsUpper(r) && unicode.ToLower(r) != r
}

// ShortName returns the last namespace segment of a fully qualified class name
func ShortName(fqcn string) string {
	if pos := strings.LastIndex(fqcn, NamespaceSeparator); pos >= 0 {
		return fqcn[pos+1:]
	}
	return fqcn
}

// NamespaceOf returns the namespace part of a fully qualified class name, or
// an empty string for a global class.
func NamespaceOf(fqcn string) string {
	fqcn = strings.TrimPrefix(fqcn, NamespaceSeparator)
	if pos := strings.LastIndex(fqcn, NamespaceSeparator); pos >= 0 {
		return fqcn[:pos]
	}
	return ""
}

// ControllerID converts a controller class name into its route id.
// "craft\controllers\CspSourcesController" -> "csp-sources"
func ControllerID(fqcn string) string {
	name := ShortName(fqcn)
	name = strings.TrimSuffix(name, ControllerSuffix)
	return Normalize(name)
}

// ActionID converts an action method name into its route id.
// "actionSaveEntry" -> "save-entry"
func ActionID(methodName string) string {
	return Normalize(strings.TrimPrefix(methodName, ActionPrefix))
}

// QualifiesAsAction reports whether a public method is an inline action:
// it must start with "action" and be neither "action" nor "actions".
func QualifiesAsAction(methodName string) bool {
	if !strings.HasPrefix(methodName, ActionPrefix) {
		return false
	}
	return methodName != ActionPrefix && methodName != ActionPrefix+"s"
}

// TrimNamespace strips leading and trailing separators, so that `\a\b\`
// and `a\b` name the same namespace.
func TrimNamespace(namespace string) string {
	return strings.Trim(namespace, NamespaceSeparator)
}

// ControllerNamespace derives the controllers namespace of a module or plugin
// class: "modules\blog\Blog" -> "modules\blog\controllers".
func ControllerNamespace(moduleClass string) string {
	moduleClass = strings.TrimPrefix(moduleClass, NamespaceSeparator)
	pos := strings.LastIndex(moduleClass, NamespaceSeparator)
	if pos < 0 {
		return moduleClass + NamespaceSeparator + "controllers"
	}
	return moduleClass[:pos] + NamespaceSeparator + "controllers"
}
