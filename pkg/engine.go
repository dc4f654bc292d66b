package quill

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
)

type Config struct {
	// Logger receives debug output from the analyzer and the interpreter.
	// Nil disables it.
	Logger *log.Logger
	// MaxCallDepth caps the call stack. Zero picks DefaultMaxCallDepth and
	// a negative value removes the cap.
	MaxCallDepth int
	// KeepLastScope keeps the last function scope for inspection.
	KeepLastScope bool
}

// Engine runs whole units of text through every stage. Each call starts
// from a fresh analyzer and interpreter.
type Engine struct {
	cfg         Config
	analyzer    *Analyzer
	interpreter *Interpreter
}

func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Check parses and analyzes text.
func (e *Engine) Check(text string) (*Program, error) {
	e.analyzer = nil

	prog, err := Parse(text)
	if err != nil {
		return nil, errors.Wrap(err, "parse")
	}

	opts := []AnalyzerOption{WithAnalyzerLogger(e.cfg.Logger)}
	if e.cfg.KeepLastScope {
		opts = append(opts, WithKeepLastScope())
	}

	e.analyzer = NewAnalyzer(opts...)
	if err := e.analyzer.Analyze(prog); err != nil {
		return nil, errors.Wrap(err, "analyze")
	}

	return prog, nil
}

// Run checks text and then evaluates it.
func (e *Engine) Run(text string) (Value, error) {
	e.interpreter = nil

	prog, err := e.Check(text)
	if err != nil {
		return None(), err
	}

	opts := []InterpreterOption{WithInterpreterLogger(e.cfg.Logger)}
	if e.cfg.MaxCallDepth != 0 {
		opts = append(opts, WithMaxCallDepth(e.cfg.MaxCallDepth))
	}

	e.interpreter = NewInterpreter(opts...)

	v, err := e.interpreter.Interpret(prog)
	if err != nil {
		return None(), errors.Wrap(err, "interpret")
	}

	return v, nil
}

func (e *Engine) RunReader(reader io.Reader) (Value, error) {
	text, err := io.ReadAll(reader)
	if err != nil {
		return None(), errors.Wrap(err, "read")
	}

	return e.Run(string(text))
}

// EmitIR checks text and returns its LLVM IR listing.
func (e *Engine) EmitIR(text string) (string, error) {
	prog, err := e.Check(text)
	if err != nil {
		return "", err
	}

	mod, err := GenerateIR(prog)
	if err != nil {
		return "", errors.Wrap(err, "ir")
	}

	return mod.String(), nil
}

// Scopes returns the scopes of the last checked unit, or nil.
func (e *Engine) Scopes() *Scopes {
	if e.analyzer == nil {
		return nil
	}

	return e.analyzer.Scopes()
}

// Globals returns the program record of the last run, or nil.
func (e *Engine) Globals() *ActivationRecord {
	if e.interpreter == nil {
		return nil
	}

	return e.interpreter.Globals()
}
