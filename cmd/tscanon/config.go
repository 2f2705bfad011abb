package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/gnana997/tscanon/pkg/converter"
	"github.com/gnana997/tscanon/pkg/scanner"
	"github.com/gnana997/tscanon/pkg/util"
)

// configFileName is looked up in the working directory when --config is
// not given.
const configFileName = ".tscanon.yaml"

// ProjectConfig holds the contents of .tscanon.yaml.
type ProjectConfig struct {
	Include    []string  `yaml:"include" validate:"dive,required"`
	Exclude    []string  `yaml:"exclude" validate:"dive,required"`
	References string    `yaml:"references" validate:"omitempty,oneof=inline named"`
	MaxDepth   int       `yaml:"max_depth" validate:"gte=0,lte=1024"`
	Output     string    `yaml:"output"`
	Log        LogConfig `yaml:"log"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=json text"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// loadProjectConfig reads the config file at path. With an empty path it
// tries .tscanon.yaml in the current directory and returns defaults (no
// error) if that does not exist.
func loadProjectConfig(path string) (*ProjectConfig, error) {
	explicit := path != ""
	if !explicit {
		path = configFileName
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && !explicit {
		return &ProjectConfig{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", filepath.Base(path), err)
	}
	return &cfg, nil
}

// Validate checks field values against their struct tags.
func (c *ProjectConfig) Validate() error {
	return validate.Struct(c)
}

// ScanConfig merges the file's patterns over the scanner defaults.
func (c *ProjectConfig) ScanConfig() (scanner.ScanConfig, error) {
	sc := scanner.DefaultScanConfig()
	if len(c.Include) > 0 {
		sc.Include = c.Include
	}
	if len(c.Exclude) > 0 {
		sc.Exclude = c.Exclude
	}
	opts, err := c.Options()
	if err != nil {
		return sc, err
	}
	sc.Options = opts
	return sc, nil
}

// Options returns the converter options named by the file.
func (c *ProjectConfig) Options() (converter.Options, error) {
	mode, err := converter.ParseReferenceMode(c.References)
	if err != nil {
		return converter.Options{}, err
	}
	return converter.Options{References: mode, MaxDepth: c.MaxDepth}, nil
}

// LoggerConfig returns the logger settings named by the file.
func (c *ProjectConfig) LoggerConfig() (util.LoggerConfig, error) {
	lc := util.DefaultLoggerConfig()
	level, err := util.ParseLogLevel(c.Log.Level)
	if err != nil {
		return lc, err
	}
	format, err := util.ParseLogFormat(c.Log.Format)
	if err != nil {
		return lc, err
	}
	lc.Level = level
	lc.Format = format
	return lc, nil
}
