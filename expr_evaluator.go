package taskcore

import (
	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

type exprEvaluator struct {
	engineConfig
}

// NewExprEvaluator constructs an Evaluator backed by expr-lang/expr.
// Undefined variables read as nil.
func NewExprEvaluator(opts ...EngineOption) Evaluator {
	return &exprEvaluator{engineConfig: newEngineConfig(opts)}
}

func (e *exprEvaluator) Evaluate(ctx MatchContext, expression string) (any, error) {
	rule, err := e.Compile(expression)
	if err != nil {
		return nil, err
	}
	return rule.Evaluate(ctx)
}

func (e *exprEvaluator) Compile(expression string) (CompiledRule, error) {
	if expression == "" {
		return nil, emptyRule(EngineExpr)
	}
	key := e.programKey(expression)
	program, ok := cachedProgram[*exprvm.Program](e.cache, key)
	if !ok {
		var err error
		program, err = exprlang.Compile(expression, e.compileOptions()...)
		if err != nil {
			return nil, ruleError(EngineExpr, expression, "", err)
		}
		storeProgram(e.cache, key, program)
	}
	return &exprRule{program: program, expression: expression}, nil
}

func (e *exprEvaluator) compileOptions() []exprlang.Option {
	options := []exprlang.Option{
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
	}
	if e.functions == nil {
		return options
	}
	registry := e.functions
	options = append(options, exprlang.Function("call", func(arguments ...any) (any, error) {
		name, rest, err := callTarget(arguments)
		if err != nil {
			return nil, err
		}
		return registry.Call(name, rest...)
	}))
	for _, name := range registry.Names() {
		name := name
		options = append(options, exprlang.Function(name, func(arguments ...any) (any, error) {
			return registry.Call(name, arguments...)
		}))
	}
	return options
}

type exprRule struct {
	program    *exprvm.Program
	expression string
}

func (r *exprRule) Evaluate(ctx MatchContext) (any, error) {
	ctx = ctx.withDefaults()
	result, err := exprlang.Run(r.program, ctx.variables())
	if err != nil {
		return nil, ruleError(EngineExpr, r.expression, ctx.ItemID, err)
	}
	return result, nil
}
