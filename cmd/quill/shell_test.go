package main

import (
	"bytes"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestOpenBlock(t *testing.T) {
	cases := []struct {
		data   string
		expect bool
	}{
		{"a := 1;", false},
		{"func F() {", true},
		{"func F() {\n if true {", true},
		{"func F() {\n if true { return 1; }", true},
		{"func F() {\n return 1;\n}", false},
		{"}", false},
		{"a @ {", true},
	}

	for _, c := range cases {
		assert.Equal(t, c.expect, openBlock(c.data), c.data)
	}
}

func TestHandleShellCommand(t *testing.T) {
	logger := log.New(io.Discard)
	var out bytes.Buffer

	assert.False(t, handleShellCommand(logger, ":debug", &out))
	assert.Equal(t, log.DebugLevel, logger.GetLevel())
	assert.Contains(t, out.String(), "debug logging on")

	assert.False(t, handleShellCommand(logger, ":debug", &out))
	assert.Equal(t, log.InfoLevel, logger.GetLevel())

	out.Reset()
	assert.False(t, handleShellCommand(logger, ":help", &out))
	assert.Equal(t, shellHelpText, out.String())

	out.Reset()
	assert.False(t, handleShellCommand(logger, ":what", &out))
	assert.Contains(t, out.String(), "unknown command: :what")

	assert.True(t, handleShellCommand(logger, ":quit", &out))
	assert.True(t, handleShellCommand(logger, ":q", &out))
}
