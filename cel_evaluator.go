package taskcore

import (
	"reflect"
	"sort"
	"strings"
	"sync"

	celgo "github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

type celEvaluator struct {
	engineConfig
}

// NewCELEvaluator constructs an Evaluator backed by cel-go. Registered
// functions are reachable through call(name) and call(name, [args]).
func NewCELEvaluator(opts ...EngineOption) Evaluator {
	return &celEvaluator{engineConfig: newEngineConfig(opts)}
}

func (e *celEvaluator) Evaluate(ctx MatchContext, expression string) (any, error) {
	rule, err := e.Compile(expression)
	if err != nil {
		return nil, err
	}
	return rule.Evaluate(ctx)
}

// Compile defers program construction to the first evaluation: CEL declares
// its variables from the binding names of the context.
func (e *celEvaluator) Compile(expression string) (CompiledRule, error) {
	if expression == "" {
		return nil, emptyRule(EngineCEL)
	}
	return &celRule{
		evaluator:  e,
		expression: expression,
		programs:   map[string]celgo.Program{},
	}, nil
}

func (e *celEvaluator) program(expression string, names []string) (celgo.Program, error) {
	key := e.programKey(expression, strings.Join(names, ","))
	if program, ok := cachedProgram[celgo.Program](e.cache, key); ok {
		return program, nil
	}
	env, err := e.env(names)
	if err != nil {
		return nil, err
	}
	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	program, err := env.Program(ast)
	if err != nil {
		return nil, err
	}
	storeProgram(e.cache, key, program)
	return program, nil
}

func (e *celEvaluator) env(names []string) (*celgo.Env, error) {
	opts := []celgo.EnvOption{
		celgo.Variable("now", celgo.TimestampType),
		celgo.Variable("args", celgo.DynType),
		celgo.Variable("metadata", celgo.DynType),
	}
	if e.functions != nil {
		opts = append(opts, celgo.Function("call",
			celgo.Overload("call_string",
				[]*celgo.Type{celgo.StringType},
				celgo.DynType,
				celgo.UnaryBinding(func(name ref.Val) ref.Val {
					return e.call(name, nil)
				}),
			),
			celgo.Overload("call_string_list",
				[]*celgo.Type{celgo.StringType, celgo.ListType(celgo.DynType)},
				celgo.DynType,
				celgo.BinaryBinding(func(name, arguments ref.Val) ref.Val {
					return e.call(name, arguments)
				}),
			),
		))
	}
	for _, name := range names {
		switch name {
		case "now", "args", "metadata":
			continue
		}
		opts = append(opts, celgo.Variable(name, celgo.DynType))
	}
	return celgo.NewEnv(opts...)
}

func (e *celEvaluator) call(name, arguments ref.Val) ref.Val {
	fn, ok := name.Value().(string)
	if !ok {
		return types.NewErr("taskcore: call name must be a string")
	}
	var args []any
	if arguments != nil {
		native, err := arguments.ConvertToNative(reflect.TypeOf([]any{}))
		if err != nil {
			return types.NewErr("taskcore: call arguments: %v", err)
		}
		args, _ = native.([]any)
	}
	result, err := e.functions.Call(fn, args...)
	if err != nil {
		return types.NewErr("%v", err)
	}
	if result == nil {
		return types.NullValue
	}
	return types.DefaultTypeAdapter.NativeToValue(result)
}

// celRule keeps one program per set of binding names, so a filter over items
// of one shape compiles once.
type celRule struct {
	evaluator  *celEvaluator
	expression string

	mu       sync.Mutex
	programs map[string]celgo.Program
}

func (r *celRule) Evaluate(ctx MatchContext) (any, error) {
	ctx = ctx.withDefaults()
	program, err := r.program(bindingNames(ctx.Bindings))
	if err != nil {
		return nil, ruleError(EngineCEL, r.expression, ctx.ItemID, err)
	}
	out, _, err := program.Eval(ctx.variables())
	if err != nil {
		return nil, ruleError(EngineCEL, r.expression, ctx.ItemID, err)
	}
	return out.Value(), nil
}

func (r *celRule) program(names []string) (celgo.Program, error) {
	key := strings.Join(names, ",")
	r.mu.Lock()
	defer r.mu.Unlock()
	if program, ok := r.programs[key]; ok {
		return program, nil
	}
	program, err := r.evaluator.program(r.expression, names)
	if err != nil {
		return nil, err
	}
	r.programs[key] = program
	return program, nil
}

func bindingNames(bindings map[string]any) []string {
	names := make([]string, 0, len(bindings))
	for name := range bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
