package config

import (
	"bytes"
	"log"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFallsBackToDefault(t *testing.T) {
	vfs := afero.NewMemMapFs()

	cfg, err := load(vfs, ".")
	require.NoError(t, err)

	assert.Equal(t, "tsh> ", cfg.Prompt)
	assert.Equal(t, ColorAuto, cfg.Color)
	assert.False(t, cfg.Verbose)
}

func TestLoadReadsConfigFile(t *testing.T) {
	vfs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(vfs, "config.yaml", []byte(
		"prompt: \"$ \"\ncolor: never\nverbose: true\n"), 0600))

	cfg, err := load(vfs, ".")
	require.NoError(t, err)

	assert.Equal(t, "$ ", cfg.Prompt)
	assert.Equal(t, ColorNever, cfg.Color)
	assert.True(t, cfg.Verbose)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	cases := []struct {
		name     string
		contents string
	}{
		{"bad color", "prompt: \"$ \"\ncolor: sometimes\n"},
		{"missing prompt", "color: never\n"},
		{"unknown key", "prompt: \"$ \"\ncolor: never\nshell_port: 22\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			vfs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(vfs, "config.yaml", []byte(tc.contents), 0600))

			_, err := load(vfs, ".")
			assert.Error(t, err)
		})
	}
}

func TestLoadAcceptsConfigFilePath(t *testing.T) {
	vfs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(vfs, "dir/config.yaml", []byte(
		"prompt: \"$ \"\ncolor: never\n"), 0600))

	cfg, err := load(vfs, "dir/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, "$ ", cfg.Prompt)
}

func TestInitializeWritesDefault(t *testing.T) {
	vfs := afero.NewMemMapFs()
	logger := log.New(&bytes.Buffer{}, "", 0)

	cfg, err := initialize(vfs, ".", logger)
	require.NoError(t, err)
	assert.Equal(t, "tsh> ", cfg.Prompt)

	exists, err := afero.Exists(vfs, "config.yaml")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestInitializeDoesNotClobber(t *testing.T) {
	vfs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(vfs, "config.yaml", []byte(
		"prompt: \"mine> \"\ncolor: never\n"), 0600))
	logger := log.New(&bytes.Buffer{}, "", 0)

	cfg, err := initialize(vfs, ".", logger)
	require.NoError(t, err)
	assert.Equal(t, "mine> ", cfg.Prompt)
}

func TestHistoryPath(t *testing.T) {
	vfs := afero.NewMemMapFs()

	cfg, err := load(vfs, "/etc/tinysh")
	require.NoError(t, err)
	assert.Equal(t, "/etc/tinysh/history", cfg.HistoryPath())

	cfg.HistoryFile = ""
	assert.Equal(t, "", cfg.HistoryPath())
}
