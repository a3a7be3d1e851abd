package fieldexpr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate_Comparisons(t *testing.T) {
	cases := []struct {
		name  string
		expr  string
		value any
		want  bool
	}{
		{"string equality", `$$ == "1.2.3"`, "1.2.3", true},
		{"string inequality", `$$ == "1.2.3"`, "2.0.0", false},
		{"not equal", `$$ != "workspace:*"`, "^1.0.0", true},
		{"numeric compare", `$$ > 10`, int64(42), true},
		{"numeric compare false", `$$ > 100`, int64(42), false},
		{"bool value", `$$`, true, true},
		{"bool value false", `$$`, false, false},
		{"arithmetic", `$$ * 2 == 10`, int64(5), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Evaluate(tc.expr, tc.value, nil)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEvaluate_PositionalExtras(t *testing.T) {
	got, err := Evaluate(`$$ == $0`, "MIT", []any{"MIT"})
	require.NoError(t, err)
	assert.True(t, got)

	got, err = Evaluate(`$$ == $0`, "MIT", []any{"Apache-2.0"})
	require.NoError(t, err)
	assert.False(t, got)
}

func TestEvaluate_Truthiness(t *testing.T) {
	cases := []struct {
		name  string
		expr  string
		value any
		want  bool
	}{
		{"nonempty string", `$$`, "hello", true},
		{"empty string", `$$`, "", false},
		{"nonzero number", `$$`, int64(3), true},
		{"zero", `$$`, int64(0), false},
		{"null", `null`, "x", false},
		{"nonempty list", `$$`, []any{"a"}, true},
		{"empty list", `$$`, []any{}, false},
		{"len builtin", `len($$) == 2`, []any{"a", "b"}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Evaluate(tc.expr, tc.value, nil)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEvaluate_StructValue(t *testing.T) {
	repo := map[string]any{"type": "git", "url": "https://example.com"}

	got, err := Evaluate(`$$.type == "git"`, repo, nil)
	require.NoError(t, err)
	assert.True(t, got)
}

func TestEvaluate_MalformedExpression(t *testing.T) {
	cases := []string{
		`$$ ==`,
		`((`,
		`undefined_reference > 2`,
	}
	for _, expr := range cases {
		_, err := Evaluate(expr, "x", nil)
		assert.Error(t, err, expr)
	}
}

func TestEvaluate_NonConcreteResult(t *testing.T) {
	// A bare constraint has no concrete truth value.
	_, err := Evaluate(`>10`, int64(5), nil)
	assert.Error(t, err)
}
