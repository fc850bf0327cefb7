package taskcore

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNoEvaluator     = errors.New("taskcore: evaluator not configured")
	ErrRuleNotBoolean  = errors.New("taskcore: rule did not return a boolean")
	ErrEmptyExpression = errors.New("taskcore: expression must not be empty")
)

// MatchContext carries the inputs of one rule evaluation. Bindings become
// top-level variables; now, args and metadata are always defined.
type MatchContext struct {
	Bindings map[string]any
	Now      *time.Time
	Args     map[string]any
	Metadata map[string]any
	// ItemID names the item being matched, for logs and errors.
	ItemID string
}

func (ctx MatchContext) withDefaults() MatchContext {
	if ctx.Now == nil {
		now := time.Now()
		ctx.Now = &now
	}
	if ctx.Args == nil {
		ctx.Args = map[string]any{}
	}
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	if ctx.Bindings == nil {
		ctx.Bindings = map[string]any{}
	}
	return ctx
}

func (ctx MatchContext) timestamp() time.Time {
	if ctx.Now == nil {
		return time.Now()
	}
	return *ctx.Now
}

// variables returns the bindings plus now, args and metadata. Bindings never
// shadow the three reserved names.
func (ctx MatchContext) variables() map[string]any {
	vars := make(map[string]any, len(ctx.Bindings)+3)
	for key, value := range ctx.Bindings {
		vars[key] = value
	}
	vars["now"] = ctx.timestamp()
	vars["args"] = ctx.Args
	vars["metadata"] = ctx.Metadata
	return vars
}

// Evaluator executes expressions against a match context.
type Evaluator interface {
	Evaluate(ctx MatchContext, expr string) (any, error)
	Compile(expr string) (CompiledRule, error)
}

// CompiledRule represents a reusable expression program.
type CompiledRule interface {
	Evaluate(ctx MatchContext) (any, error)
}

// ProgramCache stores compiled programs. Engines key it by expression; CEL
// adds the binding names.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// EngineOption configures a built-in rule engine.
type EngineOption func(*engineConfig)

type engineConfig struct {
	cache     ProgramCache
	functions *FunctionRegistry
}

// EngineWithProgramCache shares compiled programs through cache.
func EngineWithProgramCache(cache ProgramCache) EngineOption {
	return func(cfg *engineConfig) { cfg.cache = cache }
}

// EngineWithFunctions makes a copy of registry callable from rules, by name
// and through call(name, ...).
func EngineWithFunctions(registry *FunctionRegistry) EngineOption {
	return func(cfg *engineConfig) {
		if registry != nil {
			cfg.functions = registry.Clone()
		}
	}
}

func newEngineConfig(opts []EngineOption) engineConfig {
	var cfg engineConfig
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// programKey joins parts into a cache key. Programs that close over a
// function registry are only shared by evaluators holding that registry.
func (cfg engineConfig) programKey(parts ...string) string {
	key := strings.Join(parts, "\x00")
	if cfg.functions != nil {
		key += fmt.Sprintf("\x00%p", cfg.functions)
	}
	return key
}

// cachedProgram returns the program stored under key when it has type T.
func cachedProgram[T any](cache ProgramCache, key string) (T, bool) {
	var zero T
	if cache == nil {
		return zero, false
	}
	value, ok := cache.Get(key)
	if !ok {
		return zero, false
	}
	program, ok := value.(T)
	return program, ok
}

func storeProgram(cache ProgramCache, key string, program any) {
	if cache != nil {
		cache.Set(key, program)
	}
}
