package config

import (
	_ "embed"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

//go:embed default/config.yaml
var defaultConfigData []byte

const (
	ConfigurationName = "config.yaml"

	ColorAlways = "always"
	ColorAuto   = "auto"
	ColorNever  = "never"
)

type Configuration struct {
	configFs  afero.Fs
	configDir string

	// Prompt is printed before every command line.
	Prompt string `json:"prompt" validate:"required"`

	// HistoryFile stores the line history, relative to the config
	// directory. Empty disables history.
	HistoryFile string `json:"history_file"`

	// Color controls prompt and job-state coloring.
	Color string `json:"color" validate:"oneof=always auto never"`

	// Verbose enables extra diagnostics about job registration.
	Verbose bool `json:"verbose"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

func (c *Configuration) fs() afero.Fs {
	if c.configFs == nil {
		c.configFs = afero.NewOsFs()
	}
	return c.configFs
}

// HistoryPath resolves the history file inside the config directory, ""
// when history is disabled.
func (c *Configuration) HistoryPath() string {
	if c.HistoryFile == "" {
		return ""
	}
	return filepath.Join(c.configDir, c.HistoryFile)
}

func defaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}
