//go:build js_eval

package taskcore

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleFilterJSEngine(t *testing.T) {
	filter, err := NewRuleFilter(`kind === "task" && subject.indexOf("milk") >= 0`, WithRuleEngine(EngineJS))
	require.NoError(t, err)

	got, err := filter.Apply(ruleFixture())
	require.NoError(t, err)
	assert.Equal(t, []string{"Buy milk"}, subjects(got))
}

func TestRuleFilterJSCustomFunction(t *testing.T) {
	upper := func(args ...any) (any, error) {
		s, _ := args[0].(string)
		return strings.ToUpper(s), nil
	}
	filter, err := NewRuleFilter(`upper(subject) === "OAT"`,
		WithRuleEngine(EngineJS), WithCustomFunction("upper", upper))
	require.NoError(t, err)

	got, err := filter.Apply(ruleFixture())
	require.NoError(t, err)
	assert.Equal(t, []string{"Oat"}, subjects(got))
}
