package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	quill "go.quill.dev/pkg"
)

func TestLoadConfigDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := loadConfig("")
	require.NoError(t, err)

	assert.Equal(t, config{
		Prompt:       defaultPrompt,
		HistoryFile:  filepath.Join(home, historyFileName),
		MaxCallDepth: quill.DefaultMaxCallDepth,
	}, cfg)
	assert.Equal(t, log.InfoLevel, cfg.level())
}

func TestLoadConfigHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	data := "prompt: '> '\ndebug: true\nhistory_file: /tmp/q\nmax_call_depth: -1\nkeep_last_scope: true\n"
	require.NoError(t, os.WriteFile(filepath.Join(home, configFileName), []byte(data), 0o644))

	cfg, err := loadConfig("")
	require.NoError(t, err)

	assert.Equal(t, config{
		Prompt:        "> ",
		Debug:         true,
		HistoryFile:   "/tmp/q",
		MaxCallDepth:  -1,
		KeepLastScope: true,
	}, cfg)
	assert.Equal(t, log.DebugLevel, cfg.level())
}

func TestLoadConfigExplicit(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()

	path := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, defaultPrompt, cfg.Prompt)

	path = filepath.Join(dir, "blank-prompt.yaml")
	require.NoError(t, os.WriteFile(path, []byte("prompt: ''\n"), 0o644))

	cfg, err = loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, defaultPrompt, cfg.Prompt)

	_, err = loadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	path = filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(path, []byte("colour: red\n"), 0o644))

	_, err = loadConfig(path)
	assert.ErrorContains(t, err, "config "+path)

	path = filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_call_depth: lots\n"), 0o644))

	_, err = loadConfig(path)
	assert.Error(t, err)
}

func TestConfigEngine(t *testing.T) {
	cfg := defaultConfig()
	cfg.KeepLastScope = true

	e := cfg.engine(nil)
	_, err := e.Check("func F(int n) { m := n; }")
	require.NoError(t, err)
	assert.Equal(t, "F", e.Scopes().Last().Name)

	cfg.MaxCallDepth = 3
	_, err = cfg.engine(nil).Run(countdown)
	assert.ErrorContains(t, err, "limit 3")
}
