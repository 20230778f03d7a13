package knolus

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"
)

// Config controls run bounds and the functions every run starts with.
type Config struct {
	StepQuota      int
	RecursionLimit int
	// MemoryQuotaBytes bounds the variables of a run. Zero disables it.
	MemoryQuotaBytes int
	// Restrictions are consulted after the built-in limits, in order.
	Restrictions        []Restriction
	Modules             []Module
	SkipStandardLibrary bool
	Logger              *slog.Logger
}

// Engine runs scopes against a shared function library. Every run gets its
// own root context, so an Engine may serve concurrent runs.
type Engine struct {
	config  Config
	library *Context
	policy  []Restriction
}

// RunOptions customize a single run.
type RunOptions struct {
	// Parameters are declared in the scope's own context before it runs.
	Parameters map[string]Value
	// Globals are written into the run's root context without consulting
	// restrictions.
	Globals      map[string]Value
	Restrictions []Restriction
}

// NewEngine constructs an Engine with sane defaults and registers its modules.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.StepQuota <= 0 {
		cfg.StepQuota = 50000
	}
	if cfg.RecursionLimit <= 0 {
		cfg.RecursionLimit = 64
	}
	if cfg.MemoryQuotaBytes < 0 {
		return nil, fmt.Errorf("knolus: memory quota cannot be negative")
	}
	if cfg.Logger == nil {
		cfg.Logger = discardLogger
	}

	library := NewContext(nil, nil)
	library.SetLogger(cfg.Logger)
	modules := cfg.Modules
	if !cfg.SkipStandardLibrary {
		modules = append([]Module{StandardLibrary}, modules...)
	}
	for _, module := range modules {
		if err := module.Register(library); err != nil {
			return nil, fmt.Errorf("knolus: registering module %s: %w", module.Name(), err)
		}
		cfg.Logger.Debug("module registered", "module", module.Name())
	}

	policy := []Restriction{RecursionLimiter{MaxDepth: cfg.RecursionLimit}}
	if cfg.MemoryQuotaBytes > 0 {
		policy = append(policy, MemoryQuota{Bytes: cfg.MemoryQuotaBytes})
	}
	for _, r := range cfg.Restrictions {
		if r != nil {
			policy = append(policy, r)
		}
	}

	return &Engine{config: cfg, library: library, policy: policy}, nil
}

// MustNewEngine constructs an Engine or panics if the config is invalid.
func MustNewEngine(cfg Config) *Engine {
	engine, err := NewEngine(cfg)
	if err != nil {
		panic(err)
	}
	return engine
}

// ConfigSummary provides a human-readable description of the run limits.
func (e *Engine) ConfigSummary() string {
	return fmt.Sprintf("steps=%d recursion=%d memory=%dB restrictions=%d modules=%d",
		e.config.StepQuota, e.config.RecursionLimit, e.config.MemoryQuotaBytes, len(e.config.Restrictions), len(e.config.Modules))
}

// FunctionNames lists the callable names of the library, mangled operator
// and member functions excluded.
func (e *Engine) FunctionNames() []string { return e.library.FunctionNames() }

// Restriction is the composed policy a run with opts is gated by.
func (e *Engine) Restriction(opts RunOptions) Restriction {
	policies := slices.Clone(e.policy)
	for _, r := range opts.Restrictions {
		if r != nil {
			policies = append(policies, r)
		}
	}
	return Sandbox(policies...)
}

// NewRoot creates the root context of a run: the library's functions, the
// engine's limits and opts' globals.
func (e *Engine) NewRoot(opts RunOptions) *Context {
	root := NewContext(nil, e.Restriction(opts))
	for key, overloads := range e.library.functions {
		root.functions[key] = slices.Clone(overloads)
	}
	root.SetStepQuota(e.config.StepQuota)
	root.SetLogger(e.config.Logger)
	for name, value := range opts.Globals {
		root.variables[Sanitize(name)] = storedValue(value)
	}
	return root
}

// Run executes scope in a child of a fresh root.
func (e *Engine) Run(ctx context.Context, scope *Scope, opts RunOptions) Result[ScopeResult] {
	root := e.NewRoot(opts)
	started := time.Now()
	result := RunScope(ctx, scope, root, nil, opts.Parameters)
	logger := root.logger()
	if failure := result.Failure(); failure != nil && !failure.IsEmpty() {
		logger.Debug("run failed", "steps", root.Steps(), "calls", root.Calls(), "elapsed", time.Since(started), "code", failure.Code().String())
		return result
	}
	logger.Debug("run finished", "steps", root.Steps(), "calls", root.Calls(), "elapsed", time.Since(started))
	return result
}

// RunDocument decodes an AST document under the run's restrictions and runs it.
func (e *Engine) RunDocument(ctx context.Context, data []byte, format Format, opts RunOptions) Result[ScopeResult] {
	scope := DecodeDocument(data, format, e.Restriction(opts))
	if !scope.IsSuccess() {
		return FromFailure[ScopeResult](scope.Failure())
	}
	return e.Run(ctx, scope.Value(), opts)
}

