package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/toyz/actioncheck/internal/errors"
	"github.com/toyz/actioncheck/internal/utils"
)

const (
	// ConfigName is the base name of the optional tool configuration file
	ConfigName = ".actioncheck"
	// EnvPrefix prefixes environment variables, e.g. ACTIONCHECK_FORMAT
	EnvPrefix = "ACTIONCHECK"
)

// Configuration keys shared by flags, environment and config file
const (
	KeyProject       = "project"
	KeyConfigPath    = "configPath"
	KeyTemplatePaths = "templatePaths"
	KeyHandleMap     = "handleMap"
	KeyCollected     = "collected"
	KeyFormat        = "format"
	KeyWorkers       = "workers"
	KeyWatch         = "watch"
	KeyVerbose       = "verbose"
	KeyQuiet         = "quiet"
	KeyDebug         = "debug"
)

// Config holds the settings of a check run
type Config struct {
	// Project is the Craft project directory; relative paths resolve
	// against it
	Project string `mapstructure:"project"`

	// ConfigPath is the application config declaring the modules
	ConfigPath string `mapstructure:"configPath"`

	// TemplatePaths are the directories scanned for .twig files
	TemplatePaths []string `mapstructure:"templatePaths"`

	// HandleMap overrides handle to controller namespace entries
	HandleMap map[string]string `mapstructure:"handleMap"`

	// Collected lists JSON files of externally collected controller actions
	Collected []string `mapstructure:"collected"`

	Format  string `mapstructure:"format"`
	Workers int    `mapstructure:"workers"`
	Watch   bool   `mapstructure:"watch"`

	Verbose bool `mapstructure:"verbose"`
	Quiet   bool `mapstructure:"quiet"`
	Debug   bool `mapstructure:"debug"`
}

// NewViper creates a viper instance with the defaults and environment
// binding every command shares.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyProject, "")
	v.SetDefault(KeyConfigPath, filepath.Join("config", "app.php"))
	v.SetDefault(KeyTemplatePaths, []string{"templates"})
	v.SetDefault(KeyHandleMap, map[string]string{})
	v.SetDefault(KeyCollected, []string{})
	v.SetDefault(KeyFormat, "text")
	v.SetDefault(KeyWorkers, 0)
	v.SetDefault(KeyWatch, false)
	v.SetDefault(KeyVerbose, false)
	v.SetDefault(KeyQuiet, false)
	v.SetDefault(KeyDebug, false)
	return v
}

// ReadConfigFile loads the tool configuration. An explicit file must exist;
// otherwise .actioncheck.yaml is looked up in dir and is optional.
func ReadConfigFile(v *viper.Viper, explicit, dir string) error {
	if explicit != "" {
		v.SetConfigFile(explicit)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && explicit == "" {
			return nil
		}
		return errors.WrapConfigurationError(ConfigName, "read", err)
	}
	return nil
}

// LoadConfig decodes the merged settings of v
func LoadConfig(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.WrapConfigurationError(ConfigName, "decode", err)
	}
	if err := restoreHandleCase(v.ConfigFileUsed(), config.HandleMap); err != nil {
		return nil, err
	}
	return &config, nil
}

// restoreHandleCase gives handles read from the config file back the case
// viper folded away. Entries that did not come from the file are left
// alone, as is a file that is not YAML.
func restoreHandleCase(path string, handles map[string]string) error {
	if path == "" || len(handles) == 0 {
		return nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return errors.WrapConfigurationError(ConfigName, "read", err)
	}

	var raw map[string]interface{}
	if yaml.Unmarshal(content, &raw) != nil {
		return nil
	}
	for key, section := range raw {
		entries, ok := section.(map[string]interface{})
		if !ok || !strings.EqualFold(key, KeyHandleMap) {
			continue
		}
		for handle, namespace := range entries {
			folded := strings.ToLower(handle)
			if folded == handle {
				continue
			}
			if value, ok := handles[folded]; ok && value == fmt.Sprint(namespace) {
				delete(handles, folded)
				handles[handle] = value
			}
		}
	}
	return nil
}

// DiagnosticLevel maps the verbosity settings to a log level
func (c *Config) DiagnosticLevel() utils.DiagnosticLevel {
	return utils.LevelFromFlags(c.Quiet, c.Verbose, c.Debug)
}

// Resolve makes every path absolute. An empty project is located from
// start by walking up to the nearest Craft project, falling back to start.
func (c *Config) Resolve(start string) error {
	if c.Project == "" {
		c.Project = NewProjectLocator().Locate(start)
	}
	project, err := filepath.Abs(c.Project)
	if err != nil {
		return errors.WrapFileSystemError("resolve", c.Project, err)
	}
	c.Project = project

	c.ConfigPath = c.resolvePath(c.ConfigPath)
	for i, path := range c.TemplatePaths {
		c.TemplatePaths[i] = c.resolvePath(path)
	}
	for i, path := range c.Collected {
		c.Collected[i] = c.resolvePath(path)
	}
	return nil
}

func (c *Config) resolvePath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(c.Project, path)
}

// Validate checks the settings that would make a run meaningless
func (c *Config) Validate() error {
	checks := []error{
		utils.NewValidatorChain(
			utils.NotEmpty(KeyProject),
			utils.Custom(KeyProject, "must be an existing directory", utils.IsDir),
		).Validate(c.Project),
		utils.NotEmpty(KeyConfigPath)(c.ConfigPath),
		utils.IsOneOf(KeyFormat, ReporterFormats()...)(c.Format),
		utils.Custom(KeyWorkers, "cannot be negative", func(n int) bool { return n >= 0 })(c.Workers),
		utils.Custom(KeyTemplatePaths, "cannot contain empty paths", func(paths []string) bool {
			for _, path := range paths {
				if path == "" {
					return false
				}
			}
			return true
		})(c.TemplatePaths),
	}

	for _, err := range checks {
		if err != nil {
			return errors.Wrap(errors.ConfigurationErrorCode, "invalid configuration", err).
				WithSuggestion(fmt.Sprintf("check %s.yaml, %s_* variables and the command-line flags", ConfigName, EnvPrefix))
		}
	}
	return nil
}
