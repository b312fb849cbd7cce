package namespaces

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/toyz/actioncheck/internal/errors"
	"github.com/toyz/actioncheck/internal/models"
	"github.com/toyz/actioncheck/internal/naming"
	"github.com/toyz/actioncheck/internal/php"
	"github.com/toyz/actioncheck/internal/utils"
)

const (
	// AutoloadPSR4File is the PSR-4 table dumped by composer
	AutoloadPSR4File = "vendor/composer/autoload_psr4.php"
	// ComposerFile is the project manifest used when no dump exists
	ComposerFile = "composer.json"
)

type composerManifest struct {
	Autoload    composerAutoload `json:"autoload"`
	AutoloadDev composerAutoload `json:"autoload-dev"`
}

type composerAutoload struct {
	PSR4 map[string]any `json:"psr-4"`
}

// LoadAutoload reads the PSR-4 namespace prefix table of a project. The dumped
// vendor/composer/autoload_psr4.php is preferred; without it the autoload and
// autoload-dev sections of composer.json are used. A project with neither
// yields an empty table.
func LoadAutoload(projectRoot string) (models.AutoloadMap, error) {
	autoload := models.AutoloadMap{}
	if projectRoot == "" {
		return autoload, nil
	}

	dumped := filepath.Join(projectRoot, filepath.FromSlash(AutoloadPSR4File))
	if utils.FileExists(dumped) {
		value, err := php.EvalReturnFile(dumped)
		if err != nil {
			return autoload, errors.WrapParseError(dumped, err)
		}
		prefixes, ok := entries(value)
		if !ok {
			return autoload, errors.ResolutionError("autoload table", dumped, "not an array")
		}
		for _, prefix := range prefixes {
			addPrefix(autoload, prefix.key, stringList(prefix.value), "")
		}
		return autoload, nil
	}

	manifestPath := filepath.Join(projectRoot, ComposerFile)
	content, err := os.ReadFile(manifestPath)
	if err != nil {
		if os.IsNotExist(err) {
			return autoload, nil
		}
		return autoload, errors.WrapFileSystemError("read", manifestPath, err)
	}

	var manifest composerManifest
	if err := json.Unmarshal(content, &manifest); err != nil {
		return autoload, errors.WrapParseError(manifestPath, err)
	}
	for _, section := range []composerAutoload{manifest.Autoload, manifest.AutoloadDev} {
		for prefix, dirs := range section.PSR4 {
			addPrefix(autoload, prefix, stringList(dirs), projectRoot)
		}
	}
	return autoload, nil
}

// addPrefix registers dirs under a namespace prefix; relative dirs are joined
// to base when it is set.
func addPrefix(autoload models.AutoloadMap, prefix string, dirs []string, base string) {
	if prefix != "" && !strings.HasSuffix(prefix, naming.NamespaceSeparator) {
		prefix += naming.NamespaceSeparator
	}
	for _, dir := range dirs {
		if base != "" && !filepath.IsAbs(dir) {
			dir = filepath.Join(base, filepath.FromSlash(dir))
		}
		autoload[prefix] = append(autoload[prefix], filepath.Clean(dir))
	}
}
