package dynamic

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dop251/goja"

	"github.com/tabforge/tabforge/internal/render/element"
)

// Stage identifies where in the pipeline a compile failed
type Stage string

const (
	StageTransform Stage = "transform"
	StageEvaluate  Stage = "evaluate"
	StageMount     Stage = "mount"
)

// MissingEntryPoint is the terminal message for source that never
// defines the required constructor.
const MissingEntryPoint = "missing entry point"

// CompileError is the single terminal error value for the pipeline.
// Raw evaluation errors never leave this package.
type CompileError struct {
	Stage   Stage
	Message string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s: %s", e.Stage, e.Message)
}

// Config defines compiler configuration
type Config struct {
	Timeout       time.Duration // Per-execution interrupt deadline
	EntryPoint    string        // Required top-level constructor name
	EnableConsole bool          // Capture console output
}

// DefaultConfig returns production-ready compiler configuration
func DefaultConfig() Config {
	return Config{
		Timeout:       5 * time.Second,
		EntryPoint:    "App",
		EnableConsole: true,
	}
}

// LogEntry represents captured console output
type LogEntry struct {
	Level   string
	Message string
	Time    time.Time
}

// Compiler turns view-description source into mountable components
type Compiler struct {
	config Config
}

// NewCompiler creates a compiler
func NewCompiler(config Config) *Compiler {
	if config.Timeout <= 0 {
		config.Timeout = DefaultConfig().Timeout
	}
	if config.EntryPoint == "" {
		config.EntryPoint = DefaultConfig().EntryPoint
	}
	return &Compiler{config: config}
}

// Component is a compiled, invocable component constructor bound to its
// own runtime. One per tab; renders are serialized on its lock.
type Component struct {
	vm        *goja.Runtime
	construct goja.Callable
	config    Config

	mu        sync.Mutex
	console   []LogEntry
	consoleMu sync.Mutex
}

// Compile runs transform, binding assembly and evaluation. Every failure
// comes back as one CompileError.
func (c *Compiler) Compile(ctx context.Context, source string) (*Component, *CompileError) {
	transformed, err := Transform(source)
	if err != nil {
		return nil, &CompileError{Stage: StageTransform, Message: err.Error()}
	}

	vm := goja.New()
	comp := &Component{vm: vm, config: c.config}

	if err := comp.setupGlobals(); err != nil {
		return nil, &CompileError{Stage: StageEvaluate, Message: err.Error()}
	}
	if err := installBindings(vm); err != nil {
		return nil, &CompileError{Stage: StageEvaluate, Message: err.Error()}
	}

	if _, err := comp.run(ctx, func() (goja.Value, error) {
		return vm.RunString(transformed)
	}); err != nil {
		return nil, &CompileError{Stage: StageEvaluate, Message: err.Error()}
	}

	entry := vm.Get(c.config.EntryPoint)
	construct, ok := goja.AssertFunction(entry)
	if entry == nil || !ok {
		return nil, &CompileError{Stage: StageEvaluate, Message: MissingEntryPoint}
	}
	comp.construct = construct

	return comp, nil
}

// Mount instantiates the component. A throw during the component's own
// render pass comes back as a mount error; Render wraps this in the
// boundary for callers that want the degraded element instead.
func (comp *Component) Mount(ctx context.Context) (*element.Element, *CompileError) {
	comp.mu.Lock()
	defer comp.mu.Unlock()

	val, err := comp.run(ctx, func() (goja.Value, error) {
		return comp.construct(goja.Undefined())
	})
	if err != nil {
		return nil, &CompileError{Stage: StageMount, Message: err.Error()}
	}

	el, ok := val.Export().(*element.Element)
	if !ok || el == nil {
		return nil, &CompileError{Stage: StageMount, Message: "entry point did not return an element"}
	}
	return el, nil
}

// Render mounts behind the error boundary: faults render blank, never
// propagate.
func (comp *Component) Render(ctx context.Context) *element.Element {
	return Boundary(func() (*element.Element, error) {
		el, cerr := comp.Mount(ctx)
		if cerr != nil {
			return nil, cerr
		}
		return el, nil
	})
}

// Console returns captured console output
func (comp *Component) Console() []LogEntry {
	comp.consoleMu.Lock()
	defer comp.consoleMu.Unlock()
	return append([]LogEntry{}, comp.console...)
}

// run executes fn with interrupt on timeout or context cancellation,
// converting panics into errors.
func (comp *Component) run(ctx context.Context, fn func() (goja.Value, error)) (val goja.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("runtime fault: %v", r)
		}
	}()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-time.After(comp.config.Timeout):
			comp.vm.Interrupt("execution timeout exceeded")
		case <-ctx.Done():
			comp.vm.Interrupt("context cancelled")
		case <-done:
		}
	}()
	defer comp.vm.ClearInterrupt()

	return fn()
}

// setupGlobals strips dangerous globals and installs console capture
func (comp *Component) setupGlobals() error {
	vm := comp.vm

	// Remove module-system and process access
	vm.Set("require", goja.Undefined())
	vm.Set("process", goja.Undefined())
	vm.Set("module", goja.Undefined())
	vm.Set("exports", goja.Undefined())

	// Timers are no-ops: components render synchronously
	noop := func(call goja.FunctionCall) goja.Value { return goja.Undefined() }
	vm.Set("setTimeout", noop)
	vm.Set("setInterval", noop)

	if comp.config.EnableConsole {
		console := vm.NewObject()
		for _, level := range []string{"log", "warn", "error", "info"} {
			console.Set(level, comp.makeConsoleFunc(level))
		}
		return vm.Set("console", console)
	}
	return nil
}

func (comp *Component) makeConsoleFunc(level string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		var msg string
		for i, arg := range call.Arguments {
			if i > 0 {
				msg += " "
			}
			msg += arg.String()
		}

		comp.consoleMu.Lock()
		comp.console = append(comp.console, LogEntry{
			Level:   level,
			Message: msg,
			Time:    time.Now(),
		})
		comp.consoleMu.Unlock()

		return goja.Undefined()
	}
}
