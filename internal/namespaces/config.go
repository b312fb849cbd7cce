package namespaces

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/toyz/actioncheck/internal/php"
)

// LoadConfigFile decodes a configuration file into generic values. PHP files
// are evaluated statically; .json and .yaml/.yml files are decoded with the
// same shape.
func LoadConfigFile(path string) (any, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var value any
		if err := json.Unmarshal(content, &value); err != nil {
			return nil, err
		}
		return value, nil

	case ".yaml", ".yml":
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		var value any
		if err := yaml.Unmarshal(content, &value); err != nil {
			return nil, err
		}
		return value, nil

	default:
		return php.EvalReturnFile(path)
	}
}

// modulesOf returns the module definitions of an application config: the
// shared "*" section of a multi-environment config when it declares modules,
// otherwise the top-level "modules" key.
func modulesOf(config any) (any, bool) {
	if shared, ok := lookup(config, "*"); ok {
		if modules, ok := lookup(shared, "modules"); ok && modules != nil {
			return modules, true
		}
	}
	modules, ok := lookup(config, "modules")
	return modules, ok && modules != nil
}
