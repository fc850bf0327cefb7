package taskcore

import (
	"errors"
	"fmt"
	"time"
)

// Rule engines selectable with WithRuleEngine.
const (
	EngineExpr = "expr"
	EngineCEL  = "cel"
	EngineJS   = "js"
)

// RuleOption configures a RuleFilter.
type RuleOption func(*ruleConfig)

type ruleConfig struct {
	engine    string
	evaluator Evaluator
	cache     ProgramCache
	functions *FunctionRegistry
	logger    EvaluatorLogger
	args      map[string]any
	metadata  map[string]any
	clock     Clock
}

// WithRuleEngine selects one of the built-in engines. The default is expr.
func WithRuleEngine(engine string) RuleOption {
	return func(cfg *ruleConfig) { cfg.engine = engine }
}

// WithEvaluator uses evaluator instead of a built-in engine. Cache and
// function options then have no effect.
func WithEvaluator(evaluator Evaluator) RuleOption {
	return func(cfg *ruleConfig) { cfg.evaluator = evaluator }
}

// WithProgramCache shares compiled programs between filters.
func WithProgramCache(cache ProgramCache) RuleOption {
	return func(cfg *ruleConfig) { cfg.cache = cache }
}

// WithFunctionRegistry makes the registry's functions callable from rules.
func WithFunctionRegistry(registry *FunctionRegistry) RuleOption {
	return func(cfg *ruleConfig) { cfg.addFunctions(registry) }
}

// WithCustomFunction registers fn under name for the rule.
func WithCustomFunction(name string, fn Function) RuleOption {
	return func(cfg *ruleConfig) {
		registry := NewFunctionRegistry()
		if err := registry.Register(name, fn); err == nil {
			cfg.addFunctions(registry)
		}
	}
}

// WithCollectionFunctions lets rules look up other members of collection
// through item, parent and children. See ItemFunctions.
func WithCollectionFunctions(collection *Collection) RuleOption {
	return func(cfg *ruleConfig) {
		if collection != nil {
			cfg.addFunctions(ItemFunctions(collection))
		}
	}
}

// addFunctions copies registry into the rule's functions. Names already
// present keep their first definition.
func (cfg *ruleConfig) addFunctions(registry *FunctionRegistry) {
	if registry == nil {
		return
	}
	if cfg.functions == nil {
		cfg.functions = NewFunctionRegistry()
	}
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	for name, fn := range registry.functions {
		_ = cfg.functions.Register(name, fn)
	}
}

// WithEvaluatorLogger records every evaluation.
func WithEvaluatorLogger(logger EvaluatorLogger) RuleOption {
	return func(cfg *ruleConfig) {
		if logger == nil {
			cfg.logger = noopEvaluatorLogger{}
			return
		}
		cfg.logger = logger
	}
}

// WithRuleArgs exposes args to the rule as the args variable.
func WithRuleArgs(args map[string]any) RuleOption {
	return func(cfg *ruleConfig) { cfg.args = args }
}

// WithRuleMetadata exposes metadata to the rule as the metadata variable.
func WithRuleMetadata(metadata map[string]any) RuleOption {
	return func(cfg *ruleConfig) { cfg.metadata = metadata }
}

// WithRuleClock sets the source of the now variable.
func WithRuleClock(clock Clock) RuleOption {
	return func(cfg *ruleConfig) {
		if clock != nil {
			cfg.clock = clock
		}
	}
}

// RuleFilter keeps items for which a boolean expression holds. Each item is
// exposed through ItemBindings.
type RuleFilter struct {
	expression string
	engine     string
	rule       CompiledRule
	logger     EvaluatorLogger
	args       map[string]any
	metadata   map[string]any
	clock      Clock
}

// NewRuleFilter compiles expression with the configured engine.
func NewRuleFilter(expression string, opts ...RuleOption) (*RuleFilter, error) {
	cfg := ruleConfig{
		engine: EngineExpr,
		logger: noopEvaluatorLogger{},
		clock:  time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	evaluator := cfg.evaluator
	if evaluator == nil {
		var err error
		evaluator, err = builtinEvaluator(cfg)
		if err != nil {
			return nil, err
		}
	}
	rule, err := evaluator.Compile(expression)
	if err != nil {
		return nil, err
	}
	return &RuleFilter{
		expression: expression,
		engine:     cfg.engine,
		rule:       rule,
		logger:     cfg.logger,
		args:       cfg.args,
		metadata:   cfg.metadata,
		clock:      cfg.clock,
	}, nil
}

func builtinEvaluator(cfg ruleConfig) (Evaluator, error) {
	switch cfg.engine {
	case EngineExpr:
		return NewExprEvaluator(cfg.engineOptions()...), nil
	case EngineCEL:
		return NewCELEvaluator(cfg.engineOptions()...), nil
	case EngineJS:
		if !JSEvaluatorAvailable() {
			return nil, fmt.Errorf("%w: js engine requires the js_eval build tag", ErrNoEvaluator)
		}
		return NewJSEvaluator(cfg.engineOptions()...), nil
	default:
		return nil, fmt.Errorf("%w: unknown engine %q", ErrNoEvaluator, cfg.engine)
	}
}

func (cfg ruleConfig) engineOptions() []EngineOption {
	return []EngineOption{
		EngineWithProgramCache(cfg.cache),
		EngineWithFunctions(cfg.functions),
	}
}

// Expression returns the rule source.
func (f *RuleFilter) Expression() string {
	return f.expression
}

// Match evaluates the rule against item. A result that is not a boolean fails
// with ErrRuleNotBoolean.
func (f *RuleFilter) Match(item Item) (bool, error) {
	now := f.clock()
	ctx := MatchContext{
		Bindings: ItemBindings(item),
		Now:      &now,
		Args:     f.args,
		Metadata: f.metadata,
		ItemID:   item.ID(),
	}
	start := time.Now()
	result, err := f.rule.Evaluate(ctx)
	if err == nil {
		if _, ok := result.(bool); !ok {
			err = ruleError(f.engine, f.expression, item.ID(),
				fmt.Errorf("%w: got %T", ErrRuleNotBoolean, result))
		}
	}
	f.logger.LogEvaluation(EvaluatorLogEvent{
		Engine:   f.engine,
		Expr:     f.expression,
		ItemID:   item.ID(),
		Duration: time.Since(start),
		Err:      err,
	})
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}

// Apply implements Filter. Every item is evaluated; failures are joined and
// returned alongside the items that matched.
func (f *RuleFilter) Apply(items []Item) ([]Item, error) {
	var (
		out  []Item
		errs []error
	)
	for _, item := range items {
		ok, err := f.Match(item)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			out = append(out, item)
		}
	}
	return out, errors.Join(errs...)
}

// ItemBindings flattens item into the variables a rule sees: every state key
// with plain values (status as its ordinal, colors as [r, g, b, a] lists,
// font as a map), plus statusName, kind, and for composites parentID,
// childCount and recursiveSubject.
func ItemBindings(item Item) map[string]any {
	st := item.GetState()
	bindings := map[string]any{
		StateKeySubject:              st.Subject,
		StateKeyDescription:          st.Description,
		StateKeyID:                   st.ID,
		StateKeyStatus:               int(st.Status),
		StateKeyForegroundColor:      colorBinding(st.ForegroundColor),
		StateKeyBackgroundColor:      colorBinding(st.BackgroundColor),
		StateKeyFont:                 fontBinding(st.Font),
		StateKeyIcon:                 st.Icon,
		StateKeySelectedIcon:         st.SelectedIcon,
		StateKeyCreationDateTime:     st.CreationDateTime,
		StateKeyModificationDateTime: st.ModificationDateTime,
		StateKeyOrdering:             st.Ordering,
		"statusName":                 st.Status.String(),
		"kind":                       string(item.Kind()),
		"parentID":                   "",
		"childCount":                 0,
		"recursiveSubject":           st.Subject,
	}
	if node, ok := item.(compositeNode); ok {
		composite := node.composite()
		if parent := composite.Parent(); parent != nil {
			bindings["parentID"] = parent.ID()
		}
		bindings["childCount"] = composite.ChildCount()
		bindings["recursiveSubject"] = composite.RecursiveSubject()
	}
	return bindings
}

func colorBinding(c *Color) any {
	if c == nil {
		return nil
	}
	return []any{int(c.R), int(c.G), int(c.B), int(c.A)}
}

func fontBinding(f *Font) any {
	if f == nil {
		return nil
	}
	return map[string]any{
		"family":    f.Family,
		"size":      f.Size,
		"bold":      f.Bold,
		"italic":    f.Italic,
		"underline": f.Underline,
	}
}
