package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/toyz/autoimpl/internal/errors"
	"github.com/toyz/autoimpl/internal/utils"
)

// ConfigName is the base name of the project config file; viper accepts any
// extension it knows (.yaml, .yml, .toml, .json)
const ConfigName = ".autoimpl"

// EnvPrefix prefixes every environment override, e.g. AUTOIMPL_FAIL_ON_CONFLICT
const EnvPrefix = "AUTOIMPL"

// Config holds everything a run needs to know
type Config struct {
	// Language is the output language; only "go" is generated
	Language string `mapstructure:"language" yaml:"language"`

	// Dir is the working directory patterns are resolved against
	Dir string `mapstructure:"dir" yaml:"dir"`

	// Patterns are go list patterns selecting the packages to scan
	Patterns []string `mapstructure:"patterns" yaml:"patterns"`

	// Tags are build tags passed to the package loader
	Tags []string `mapstructure:"tags" yaml:"tags"`

	// FailOnConflict turns a conflicting member into a failure of its target
	FailOnConflict bool `mapstructure:"fail_on_conflict" yaml:"fail_on_conflict"`

	// Concurrency caps the targets processed at once; 0 means GOMAXPROCS
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency"`

	// Debounce is how long watch mode waits for file events to settle
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`

	LogJSON  bool   `mapstructure:"log_json" yaml:"log_json"`
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose"`
	Quiet    bool   `mapstructure:"quiet" yaml:"quiet"`

	// File is the config file that was read, empty when none was found
	File string `mapstructure:"-" yaml:"-"`
}

// flagKeys maps command line flag names onto config keys
var flagKeys = map[string]string{
	"language":         "language",
	"dir":              "dir",
	"tags":             "tags",
	"fail-on-conflict": "fail_on_conflict",
	"concurrency":      "concurrency",
	"debounce":         "debounce",
	"log-json":         "log_json",
	"log-level":        "log_level",
	"verbose":          "verbose",
	"quiet":            "quiet",
}

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("language", "go")
	v.SetDefault("dir", ".")
	v.SetDefault("patterns", []string{"./..."})
	v.SetDefault("tags", []string{})
	v.SetDefault("fail_on_conflict", false)
	v.SetDefault("concurrency", 0)
	v.SetDefault("debounce", 300*time.Millisecond)
	v.SetDefault("log_json", false)
	v.SetDefault("log_level", "warn")
	v.SetDefault("verbose", false)
	v.SetDefault("quiet", false)
}

// New returns a viper instance with defaults and environment binding set
// up. Precedence, lowest first: defaults, config file, environment, flags.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	SetDefaults(v)
	return v
}

// BindFlags binds the flags of a command that exist in fs to their config
// keys. A flag only overrides lower sources when it was set explicitly.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := fs.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return errors.WrapConfigurationError(key, "bind", err)
		}
	}
	return nil
}

// Load reads configuration into a Config. An explicit file must exist;
// otherwise .autoimpl.* is looked up in dir and then in the root of the
// module containing dir, and a missing file is not an error.
func Load(v *viper.Viper, file, dir string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(ConfigName)
		for _, path := range searchPaths(dir) {
			v.AddConfigPath(path)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, errors.WrapConfigurationError(displayName(file), "read", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.WrapConfigurationError(displayName(v.ConfigFileUsed()), "decode", err)
	}
	cfg.File = v.ConfigFileUsed()

	// a relative dir in a config file is relative to that file
	if cfg.File != "" && v.InConfig("dir") && !filepath.IsAbs(cfg.Dir) {
		cfg.Dir = filepath.Join(filepath.Dir(cfg.File), cfg.Dir)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks option combinations that can never work
func (c *Config) Validate() error {
	if c.Verbose && c.Quiet {
		return errors.ConfigurationError("verbose", "verbose and quiet are mutually exclusive")
	}
	if c.Concurrency < 0 {
		return errors.ConfigurationError("concurrency", "must not be negative").
			WithContext("value", c.Concurrency)
	}
	if c.Debounce < 0 {
		return errors.ConfigurationError("debounce", "must not be negative").
			WithContext("value", c.Debounce.String())
	}
	if strings.TrimSpace(c.Language) == "" {
		return errors.ConfigurationError("language", "must not be empty").
			WithSuggestion("Remove the setting to generate Go")
	}
	return nil
}

// EffectiveLogLevel is the zap level implied by the verbosity switches
func (c *Config) EffectiveLogLevel() string {
	switch {
	case c.Quiet:
		return "error"
	case c.Verbose:
		return "debug"
	case c.LogLevel != "":
		return c.LogLevel
	default:
		return "warn"
	}
}

// searchPaths lists dir and, when different, the module root above it
func searchPaths(dir string) []string {
	if dir == "" {
		dir = "."
	}
	paths := []string{dir}
	if info, err := utils.NewGoModParser().ModuleFor(dir); err == nil {
		if abs, err := filepath.Abs(dir); err != nil || abs != info.Root {
			paths = append(paths, info.Root)
		}
	}
	return paths
}

func displayName(file string) string {
	if file == "" {
		return ConfigName
	}
	return file
}
