package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment variable, e.g. GLOSSARY_LOG_LEVEL.
const EnvPrefix = "GLOSSARY"

// DefaultConfigName is the file name (without extension) searched for in the
// working directory when no explicit config file is given.
const DefaultConfigName = "glossary"

// ErrConfigExists is returned by WriteDefault when the target file already exists.
var ErrConfigExists = errors.New("config file already exists")

// defaults lists every key with its default value. Each key is also bound to
// its environment variable.
var defaults = []struct {
	key   string
	value any
}{
	{"log.level", "info"},
	{"log.format", "text"},
	{"glossary.data_dir", "./Data"},
	{"glossary.file", ""},
	{"storage.atomic_writes", true},
	{"storage.autosave_history", true},
	{"quiz.stages", 10},
	{"quiz.mode", "key"},
	{"quiz.choices", 4},
	{"console.color", true},
}

// Options tune where Load looks for settings.
type Options struct {
	// ConfigFile is an explicit YAML file. It must exist when set.
	ConfigFile string

	// SearchPaths are directories searched for glossary.yaml when ConfigFile
	// is empty. Defaults to the working directory.
	SearchPaths []string

	// EnvFile is a dotenv file loaded before reading the environment.
	// A missing file is ignored. Defaults to ".env".
	EnvFile string

	// Overrides take precedence over every other source. Keys use the dotted
	// form, e.g. "log.level".
	Overrides map[string]any
}

// Load configuration from defaults, an optional YAML file, a dotenv file and
// environment variables, in increasing order of precedence, then applies
// Overrides. Returns a populated Config or an error if loading or validation
// fails.
func Load(opts Options) (*Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
	}

	v := viper.New()

	for _, d := range defaults {
		v.SetDefault(d.key, d.value)
	}

	v.SetConfigType("yaml")
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", opts.ConfigFile, err)
		}
	} else {
		v.SetConfigName(DefaultConfigName)
		paths := opts.SearchPaths
		if len(paths) == 0 {
			paths = []string{"."}
		}
		for _, p := range paths {
			v.AddConfigPath(p)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	// Configure environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, d := range defaults {
		envVar := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(d.key, ".", "_"))
		if err := v.BindEnv(d.key, envVar); err != nil {
			return nil, fmt.Errorf("error binding environment variable %s: %w", envVar, err)
		}
	}

	for key, value := range opts.Overrides {
		v.Set(key, value)
	}

	// Unmarshal and validate
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Log:      LogConfig{Level: "info", Format: "text"},
		Glossary: GlossaryConfig{DataDir: "./Data"},
		Storage:  StorageConfig{AtomicWrites: true, AutosaveHistory: true},
		Quiz:     QuizConfig{Stages: 10, Mode: "key", Choices: 4},
		Console:  ConsoleConfig{Color: true},
	}
}

// WriteDefault writes Default() as YAML to path, creating parent directories.
// It refuses to overwrite an existing file.
func WriteDefault(path string) error {
	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to encode default config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory %s: %w", dir, err)
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		}
		return fmt.Errorf("failed to create config file %s: %w", path, err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}
