package routes

import (
	"strings"

	"github.com/toyz/actioncheck/internal/models"
	"github.com/toyz/actioncheck/internal/naming"
)

// Build computes the routes of every controller under every handle whose
// namespace contains it. Overlapping namespaces attribute a controller to
// each matching handle. reflector may be nil, in which case every
// controller's default action is "index".
func Build(handles models.HandleMap, actions models.ControllerActions, reflector models.Reflector) *Index {
	idx := NewIndex()

	for _, class := range actions.Controllers() {
		fqcn := naming.TrimNamespace(class)
		controllerID := naming.ControllerID(fqcn)
		defaultID := ""

		for _, handle := range handles.Handles() {
			namespace := naming.TrimNamespace(handles[handle])
			if namespace == "" || !strings.HasPrefix(fqcn, namespace+naming.NamespaceSeparator) {
				continue
			}
			if defaultID == "" {
				defaultID = DefaultActionID(fqcn, reflector)
			}

			base := controllerID
			if handle != models.CoreHandle {
				base = handle + "/" + controllerID
			}
			for _, method := range actions[class] {
				actionID := naming.ActionID(method)
				idx.Add(base + "/" + actionID)
				if actionID == defaultID {
					idx.Add(base)
				}
			}
		}
	}
	return idx
}

// DefaultActionID resolves the action a controller runs when its route names
// no action: the normalized declared default of $defaultAction, or "index"
// when it is missing, empty, not a string or cannot be read.
func DefaultActionID(class string, reflector models.Reflector) string {
	if reflector == nil {
		return models.DefaultActionID
	}
	reflection, err := reflector.Reflect(class)
	if err != nil {
		return models.DefaultActionID
	}
	value, ok := reflection.DefaultValueOf(models.DefaultActionProperty)
	if !ok {
		return models.DefaultActionID
	}
	s, ok := value.(string)
	if !ok || s == "" {
		return models.DefaultActionID
	}
	return naming.Normalize(s)
}
