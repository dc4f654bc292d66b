package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	quill "go.quill.dev/pkg"
)

func main() {
	if err := runCLI(os.Args, os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

func runCLI(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	std := streams{in: stdin, out: stdout, err: stderr}

	if len(args) < 2 {
		return usageError(std.err)
	}

	switch args[1] {
	case "run":
		return runCommand(args[2:], std)
	case "check":
		return checkCommand(args[2:], std)
	case "tokens":
		return tokensCommand(args[2:], std)
	case "ir":
		return irCommand(args[2:], std)
	case "repl":
		return replCommand(args[2:], std)
	case "shell":
		return shellCommand(args[2:], std)
	case "help", "-h", "--help":
		printUsage(std.out)
		return nil
	default:
		return usageError(std.err)
	}
}

type commandFlags struct {
	fs         *flag.FlagSet
	configPath *string
	debug      *bool
	maxDepth   *int
}

func newCommandFlags(name string) *commandFlags {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))

	return &commandFlags{
		fs:         fs,
		configPath: fs.String("config", "", "read configuration from this file"),
		debug:      fs.Bool("debug", false, "log scopes and activation records"),
		maxDepth:   fs.Int("max-depth", 0, "maximum call stack depth, negative for none"),
	}
}

// parse reads args and returns the configuration with any flag given on the
// command line applied over it.
func (c *commandFlags) parse(args []string) (config, error) {
	if err := c.fs.Parse(args); err != nil {
		return config{}, errors.Wrapf(err, "quill %s", c.fs.Name())
	}

	cfg, err := loadConfig(*c.configPath)
	if err != nil {
		return cfg, err
	}

	c.fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "debug":
			cfg.Debug = *c.debug
		case "max-depth":
			cfg.MaxCallDepth = *c.maxDepth
		}
	})

	return cfg, nil
}

// source returns the text named by the single positional argument, "-"
// meaning standard input.
func (c *commandFlags) source(stdin io.Reader) (string, error) {
	if c.fs.NArg() != 1 {
		return "", errors.Errorf("quill %s: source path required", c.fs.Name())
	}

	path := c.fs.Arg(0)
	if path == "-" {
		text, err := io.ReadAll(stdin)
		if err != nil {
			return "", errors.Wrap(err, "read stdin")
		}
		return string(text), nil
	}

	text, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrap(err, "read source")
	}

	return string(text), nil
}

func runCommand(args []string, std streams) error {
	flags := newCommandFlags("run")

	cfg, err := flags.parse(args)
	if err != nil {
		return err
	}

	text, err := flags.source(std.in)
	if err != nil {
		return err
	}

	v, err := cfg.engine(cfg.logger(std.err)).Run(text)
	if err != nil {
		return err
	}

	if !v.IsNone() {
		fmt.Fprintln(std.out, v)
	}

	return nil
}

func checkCommand(args []string, std streams) error {
	flags := newCommandFlags("check")

	cfg, err := flags.parse(args)
	if err != nil {
		return err
	}

	text, err := flags.source(std.in)
	if err != nil {
		return err
	}

	e := cfg.engine(cfg.logger(std.err))
	if _, err := e.Check(text); err != nil {
		return err
	}

	fmt.Fprintln(std.out, "ok")
	return nil
}

func tokensCommand(args []string, std streams) error {
	flags := newCommandFlags("tokens")

	if _, err := flags.parse(args); err != nil {
		return err
	}

	text, err := flags.source(std.in)
	if err != nil {
		return err
	}

	toks, errs := quill.Tokenize(text)
	for _, tok := range toks {
		fmt.Fprintf(std.out, "%-8s %-18s %q\n", tok.Loc, tok.Typ, tok.Value)
	}

	for _, err := range errs {
		fmt.Fprintln(std.err, err)
	}

	if len(errs) > 0 {
		return errors.Errorf("quill tokens: %d lexical errors", len(errs))
	}

	return nil
}

func irCommand(args []string, std streams) error {
	flags := newCommandFlags("ir")

	cfg, err := flags.parse(args)
	if err != nil {
		return err
	}

	text, err := flags.source(std.in)
	if err != nil {
		return err
	}

	out, err := cfg.engine(cfg.logger(std.err)).EmitIR(text)
	if err != nil {
		return err
	}

	fmt.Fprint(std.out, out)
	return nil
}

func replCommand(args []string, std streams) error {
	flags := newCommandFlags("repl")

	cfg, err := flags.parse(args)
	if err != nil {
		return err
	}

	return runREPL(cfg)
}

func shellCommand(args []string, std streams) error {
	flags := newCommandFlags("shell")

	cfg, err := flags.parse(args)
	if err != nil {
		return err
	}

	return runShell(cfg, std)
}

// evaluate runs one unit of input and renders its result the way both
// interactive modes print it.
func evaluate(e *quill.Engine, input string) (string, error) {
	v, err := e.Run(input)
	if err != nil {
		return "", err
	}

	return v.String(), nil
}

func usageError(w io.Writer) error {
	printUsage(w)
	return errors.New("invalid command")
}

func printUsage(w io.Writer) {
	prog := filepath.Base(os.Args[0])
	fmt.Fprintf(w, "Usage: %s <command> [flags] [file|-]\n", prog)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run      parse, check and run a program, printing its result")
	fmt.Fprintln(w, "  check    parse and check a program only")
	fmt.Fprintln(w, "  tokens   print every token of a program")
	fmt.Fprintln(w, "  ir       print the LLVM IR listing of a program")
	fmt.Fprintln(w, "  repl     start the interactive terminal UI")
	fmt.Fprintln(w, "  shell    start the line mode prompt")
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -config string")
	fmt.Fprintln(w, "    read configuration from this file (default $HOME/"+configFileName+")")
	fmt.Fprintln(w, "  -debug")
	fmt.Fprintln(w, "    log scopes and activation records")
	fmt.Fprintln(w, "  -max-depth int")
	fmt.Fprintln(w, "    maximum call stack depth, negative for none")
}

type flagErrorSink struct{}

func (flagErrorSink) Write(p []byte) (int, error) {
	return len(p), nil
}
