//go:build js_eval

package taskcore

import (
	"fmt"

	"github.com/dop251/goja"
)

type jsEvaluator struct {
	engineConfig
}

// NewJSEvaluator constructs an Evaluator backed by goja. Each evaluation runs
// in a fresh runtime.
func NewJSEvaluator(opts ...EngineOption) Evaluator {
	return &jsEvaluator{engineConfig: newEngineConfig(opts)}
}

func (e *jsEvaluator) Evaluate(ctx MatchContext, expression string) (any, error) {
	rule, err := e.Compile(expression)
	if err != nil {
		return nil, err
	}
	return rule.Evaluate(ctx)
}

func (e *jsEvaluator) Compile(expression string) (CompiledRule, error) {
	if expression == "" {
		return nil, emptyRule(EngineJS)
	}
	// Functions are bound per runtime, so programs share one key per
	// expression.
	program, ok := cachedProgram[*goja.Program](e.cache, expression)
	if !ok {
		var err error
		program, err = goja.Compile("", fmt.Sprintf("(function(){ return (%s); })()", expression), false)
		if err != nil {
			return nil, ruleError(EngineJS, expression, "", err)
		}
		storeProgram(e.cache, expression, program)
	}
	return &jsRule{functions: e.functions, expression: expression, program: program}, nil
}

type jsRule struct {
	functions  *FunctionRegistry
	expression string
	program    *goja.Program
}

func (r *jsRule) Evaluate(ctx MatchContext) (any, error) {
	ctx = ctx.withDefaults()
	vm := goja.New()
	for key, value := range ctx.variables() {
		if err := vm.Set(key, value); err != nil {
			return nil, ruleError(EngineJS, r.expression, ctx.ItemID, err)
		}
	}
	if r.functions != nil {
		registry := r.functions
		_ = vm.Set("call", func(name string, arguments ...any) (any, error) {
			return registry.Call(name, arguments...)
		})
		for _, name := range registry.Names() {
			name := name
			_ = vm.Set(name, func(arguments ...any) (any, error) {
				return registry.Call(name, arguments...)
			})
		}
	}
	value, err := vm.RunProgram(r.program)
	if err != nil {
		return nil, ruleError(EngineJS, r.expression, ctx.ItemID, err)
	}
	return value.Export(), nil
}

// JSEvaluatorAvailable reports whether the binary was built with js_eval.
func JSEvaluatorAvailable() bool {
	return true
}
