package taskcore

import (
	"errors"
	"fmt"
)

// EvaluationError reports a rule that failed for one item. ItemID is empty
// when the rule failed to compile.
type EvaluationError struct {
	Engine string
	Expr   string
	ItemID string
	Err    error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.ItemID == "" {
		return fmt.Sprintf("taskcore: %s rule %q does not compile: %v", e.Engine, e.Expr, e.Err)
	}
	return fmt.Sprintf("taskcore: %s rule %q on item %s: %v", e.Engine, e.Expr, e.ItemID, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ruleError attaches engine, expression and item to err. An EvaluationError
// already in the chain only has its empty fields filled.
func ruleError(engine, expr, itemID string, err error) error {
	if err == nil {
		return nil
	}
	var evalErr *EvaluationError
	if !errors.As(err, &evalErr) {
		return &EvaluationError{Engine: engine, Expr: expr, ItemID: itemID, Err: err}
	}
	if evalErr.Engine == "" {
		evalErr.Engine = engine
	}
	if evalErr.Expr == "" {
		evalErr.Expr = expr
	}
	if evalErr.ItemID == "" {
		evalErr.ItemID = itemID
	}
	return err
}

func emptyRule(engine string) error {
	return fmt.Errorf("%w (%s engine)", ErrEmptyExpression, engine)
}
