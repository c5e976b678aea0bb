package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Log      LogConfig      `mapstructure:"log" yaml:"log" validate:"required"`
	Glossary GlossaryConfig `mapstructure:"glossary" yaml:"glossary" validate:"required"`
	Storage  StorageConfig  `mapstructure:"storage" yaml:"storage"`
	Quiz     QuizConfig     `mapstructure:"quiz" yaml:"quiz" validate:"required"`
	Console  ConsoleConfig  `mapstructure:"console" yaml:"console"`
}

// LogConfig contains logging settings. Logs always go to stderr.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"required,oneof=text json"`
}

// GlossaryConfig says where glossary files live.
type GlossaryConfig struct {
	// DataDir is scanned for glossaries when no file is given.
	DataDir string `mapstructure:"data_dir" yaml:"data_dir" validate:"required"`
	// File is opened directly when set, skipping discovery.
	File string `mapstructure:"file" yaml:"file"`
}

// StorageConfig controls how the cache and history files are written.
type StorageConfig struct {
	// AtomicWrites writes to a temp file and renames it over the target.
	AtomicWrites bool `mapstructure:"atomic_writes" yaml:"atomic_writes"`
	// AutosaveHistory persists the search history after every logged search.
	AutosaveHistory bool `mapstructure:"autosave_history" yaml:"autosave_history"`
}

// QuizConfig holds the quiz defaults used when the command gives none.
type QuizConfig struct {
	Stages int    `mapstructure:"stages" yaml:"stages" validate:"min=1,max=20"`
	Mode   string `mapstructure:"mode" yaml:"mode" validate:"required,oneof=key def"`

	// Choices is the number of answer options per question.
	Choices int `mapstructure:"choices" yaml:"choices" validate:"min=2,max=9"`
}

// ConsoleConfig contains terminal presentation settings.
type ConsoleConfig struct {
	Color bool `mapstructure:"color" yaml:"color"`
}
