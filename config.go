package mend

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance.
var validate = validator.New()

// Duration is a time.Duration read from its string form ("500ms", "2s") in
// configuration files.
type Duration time.Duration

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Config is the file representation of a Reconciler's settings.
//
// Example (YAML):
//
//	partitioning: markdown
//	debounce: 500ms
//	autosave: false
//	save_timeout: 5s
//	error_history: 10
type Config struct {
	Partitioning string   `yaml:"partitioning" json:"partitioning" toml:"partitioning" validate:"required"`
	Debounce     Duration `yaml:"debounce" json:"debounce" toml:"debounce" validate:"gte=0"`
	AutoSave     *bool    `yaml:"autosave" json:"autosave" toml:"autosave"`
	SaveTimeout  Duration `yaml:"save_timeout" json:"save_timeout" toml:"save_timeout" validate:"gte=0"`
	ErrorHistory int      `yaml:"error_history" json:"error_history" toml:"error_history" validate:"gte=0,lte=1000"`
}

// DefaultConfig returns the settings New uses.
func DefaultConfig() Config {
	enabled := true
	return Config{
		Partitioning: "default",
		Debounce:     Duration(DefaultDebounce),
		AutoSave:     &enabled,
	}
}

// Validate checks the struct tags of c.
func (c Config) Validate() error {
	return validate.Struct(c)
}

// LoadConfig reads path, decoding it with the codec matching its extension.
// Unset fields keep the values of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	codec, err := CodecFor(path)
	if err != nil {
		return Config{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := codec.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode %s config: %w", codec.ContentType(), err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("validation failed: %w", err)
	}
	return cfg, nil
}

// NewFromConfig creates a Reconciler configured by cfg.
func NewFromConfig(cfg Config, partitioner Partitioner) (*Reconciler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	r := New(cfg.Partitioning, partitioner).
		Debounce(time.Duration(cfg.Debounce)).
		SaveTimeout(time.Duration(cfg.SaveTimeout)).
		ErrorHistorySize(cfg.ErrorHistory)
	if cfg.AutoSave != nil && !*cfg.AutoSave {
		r.DisableAutoSave()
	}
	return r, nil
}
