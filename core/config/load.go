package config

import (
	"errors"
	"io/fs"
	"log"
	"path/filepath"

	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

// Load reads the configuration from the directory. A missing config file
// falls back to the embedded default so the shell works with zero setup.
func Load(path string) (*Configuration, error) {
	return load(afero.NewOsFs(), path)
}

func load(vfs afero.Fs, path string) (*Configuration, error) {
	// If given the path to a config.yaml file, move back up a level.
	if filepath.Base(path) == ConfigurationName {
		path = filepath.Dir(path)
	}

	configContents, err := afero.ReadFile(vfs, filepath.Join(path, ConfigurationName))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		out := defaultConfig()
		out.configFs = vfs
		out.configDir = path
		return out, nil
	case err != nil:
		return nil, err
	}

	var out Configuration
	if err := yaml.UnmarshalStrict(configContents, &out); err != nil {
		return nil, err
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	out.configFs = vfs
	out.configDir = path
	return &out, nil
}

// Initialize writes the default configuration into the directory,
// refusing to clobber an existing one.
func Initialize(path string, logger *log.Logger) (*Configuration, error) {
	return initialize(afero.NewOsFs(), path, logger)
}

func initialize(vfs afero.Fs, path string, logger *log.Logger) (*Configuration, error) {
	configPath := filepath.Join(path, ConfigurationName)

	exists, err := afero.Exists(vfs, configPath)
	if err != nil {
		return nil, err
	}
	if exists {
		logger.Printf("Configuration already exists at %s, skipping.", configPath)
		return load(vfs, path)
	}

	logger.Printf("Writing default configuration to %s", configPath)
	if err := afero.WriteFile(vfs, configPath, defaultConfigData, 0600); err != nil {
		return nil, err
	}

	return load(vfs, path)
}
