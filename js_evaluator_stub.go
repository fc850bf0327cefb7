//go:build !js_eval

package taskcore

// NewJSEvaluator returns nil unless the binary is built with js_eval.
func NewJSEvaluator(...EngineOption) Evaluator {
	return nil
}

// JSEvaluatorAvailable reports whether the binary was built with js_eval.
func JSEvaluatorAvailable() bool {
	return false
}
