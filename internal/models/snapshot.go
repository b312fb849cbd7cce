package models

// Snapshot holds the lookup tables built once per run: handles, discovered
// controllers and the project root. It is never modified after creation and
// all accessors return copies, so it can be shared between goroutines.
type Snapshot struct {
	projectRoot string
	handles     HandleMap
	controllers ControllerActions
	autoload    AutoloadMap
}

// NewSnapshot copies its inputs into a new snapshot
func NewSnapshot(projectRoot string, handles HandleMap, controllers ControllerActions, autoload AutoloadMap) *Snapshot {
	s := &Snapshot{
		projectRoot: projectRoot,
		handles:     handles.Clone(),
		controllers: controllers.Clone(),
		autoload:    make(AutoloadMap, len(autoload)),
	}
	for prefix, dirs := range autoload {
		s.autoload[prefix] = append([]string(nil), dirs...)
	}
	return s
}

func (s *Snapshot) ProjectRoot() string {
	return s.projectRoot
}

// Handles returns a copy of the handle map
func (s *Snapshot) Handles() HandleMap {
	return s.handles.Clone()
}

// Namespace returns the namespace registered for handle
func (s *Snapshot) Namespace(handle string) (string, bool) {
	ns, ok := s.handles[handle]
	return ns, ok
}

// Controllers returns a copy of the discovered controllers
func (s *Snapshot) Controllers() ControllerActions {
	return s.controllers.Clone()
}

// Autoload returns a copy of the autoload table
func (s *Snapshot) Autoload() AutoloadMap {
	out := make(AutoloadMap, len(s.autoload))
	for prefix, dirs := range s.autoload {
		out[prefix] = append([]string(nil), dirs...)
	}
	return out
}
