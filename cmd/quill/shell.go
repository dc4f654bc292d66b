package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/peterh/liner"
	"github.com/pkg/errors"

	quill "go.quill.dev/pkg"
)

const (
	shellBanner    = "Quill shell. Type :help for commands, Ctrl+D to exit."
	continuePrompt = "...    "
	shellHelpText  = `:help    show this text
:debug   toggle debug logging
:quit    exit the shell
Input continues on the next line while a '{' is left open.
`
)

func runShell(cfg config, std streams) error {
	fmt.Fprintln(std.out, shellBanner)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if cfg.HistoryFile != "" {
		if f, err := os.Open(cfg.HistoryFile); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}

	logger := cfg.logger(std.err)
	e := cfg.engine(logger)

	for {
		input, ok := readUnit(ln, cfg.Prompt, continuePrompt)
		if !ok {
			fmt.Fprintln(std.out)
			break
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		ln.AppendHistory(strings.ReplaceAll(input, "\n", " "))

		if strings.HasPrefix(input, ":") {
			if done := handleShellCommand(logger, input, std.out); done {
				break
			}
			continue
		}

		out, err := evaluate(e, input)
		if err != nil {
			fmt.Fprintln(std.out, errorStyle.Render(err.Error()))
			continue
		}
		fmt.Fprintln(std.out, resultStyle.Render(out))
	}

	if cfg.HistoryFile != "" {
		f, err := os.Create(cfg.HistoryFile)
		if err != nil {
			return errors.Wrap(err, "write history")
		}
		defer f.Close()

		if _, err := ln.WriteHistory(f); err != nil {
			return errors.Wrap(err, "write history")
		}
	}

	return nil
}

// handleShellCommand runs a ':' command and reports whether the shell
// should exit.
func handleShellCommand(logger *log.Logger, input string, out io.Writer) bool {
	switch cmd := strings.Fields(input)[0]; cmd {
	case ":help", ":h":
		fmt.Fprint(out, shellHelpText)
	case ":debug", ":d":
		if logger.GetLevel() == log.DebugLevel {
			logger.SetLevel(log.InfoLevel)
			fmt.Fprintln(out, mutedStyle.Render("debug logging off"))
		} else {
			logger.SetLevel(log.DebugLevel)
			fmt.Fprintln(out, mutedStyle.Render("debug logging on"))
		}
	case ":quit", ":q":
		return true
	default:
		fmt.Fprintln(out, errorStyle.Render("unknown command: "+cmd))
	}

	return false
}

// readUnit reads lines until the text no longer has an open block. It
// returns false on EOF.
func readUnit(ln *liner.State, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		p := prompt
		if b.Len() > 0 {
			p = cont
		}

		line, err := ln.Prompt(p)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			// Ctrl+C drops the pending input.
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		if !openBlock(b.String()) {
			return b.String(), true
		}
	}
}

// openBlock reports whether text has more '{' than '}' tokens.
func openBlock(text string) bool {
	toks, _ := quill.Tokenize(text)

	depth := 0
	for _, tok := range toks {
		switch tok.Typ {
		case quill.TokenOpenCurly:
			depth++
		case quill.TokenCloseCurly:
			depth--
		}
	}

	return depth > 0
}
