package models

import (
	"maps"
	"slices"
)

const (
	CoreHandle          = ""                   // handle of the core framework
	CoreNamespace       = `craft\controllers`  // controllers namespace of the core framework
	BaseControllerClass = `yii\web\Controller` // every web controller extends this class

	DefaultActionProperty = "defaultAction" // property naming a controller's default action
	DefaultActionID       = "index"         // default action when none is declared
)

// HandleMap maps module handles to the namespace holding their controllers
type HandleMap map[string]string

// Clone returns an independent copy of the map
func (h HandleMap) Clone() HandleMap {
	if h == nil {
		return HandleMap{}
	}
	return maps.Clone(h)
}

// Handles returns the handles in sorted order
func (h HandleMap) Handles() []string {
	return slices.Sorted(maps.Keys(h))
}

// ControllerActions maps controller class names to their action method names
type ControllerActions map[string][]string

// Clone returns a deep copy of the map
func (c ControllerActions) Clone() ControllerActions {
	out := make(ControllerActions, len(c))
	for class, actions := range c {
		out[class] = slices.Clone(actions)
	}
	return out
}

// Controllers returns the class names in sorted order
func (c ControllerActions) Controllers() []string {
	return slices.Sorted(maps.Keys(c))
}

// AutoloadMap maps PSR-4 namespace prefixes (with a trailing separator) to
// their base directories.
type AutoloadMap map[string][]string

// Prefixes returns the namespace prefixes in sorted order
func (a AutoloadMap) Prefixes() []string {
	return slices.Sorted(maps.Keys(a))
}
