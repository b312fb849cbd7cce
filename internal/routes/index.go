// Package routes builds the set of route strings the application router
// accepts from the handle map and the controller action lists.
package routes

import (
	"maps"
	"slices"
)

// Index is a set of valid route strings
type Index struct {
	routes map[string]struct{}
}

// NewIndex creates an index holding routes
func NewIndex(routes ...string) *Index {
	idx := &Index{routes: make(map[string]struct{}, len(routes))}
	for _, route := range routes {
		idx.Add(route)
	}
	return idx
}

// Add inserts a route
func (i *Index) Add(route string) {
	i.routes[route] = struct{}{}
}

// Contains reports whether route is valid
func (i *Index) Contains(route string) bool {
	_, ok := i.routes[route]
	return ok
}

// Len returns the number of routes
func (i *Index) Len() int {
	return len(i.routes)
}

// Routes returns every route in sorted order
func (i *Index) Routes() []string {
	return slices.Sorted(maps.Keys(i.routes))
}
