package metric

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCondition_Empty(t *testing.T) {
	t.Parallel()

	cond, err := ParseCondition("")
	require.NoError(t, err)
	require.Nil(t, cond)
}

func TestParseCondition_Numeric(t *testing.T) {
	t.Parallel()

	cond, err := ParseCondition("age >= 21")
	require.NoError(t, err)
	require.Equal(t, "age", cond.Column)
	require.Equal(t, ">=", cond.Op)
	require.Equal(t, 21.0, cond.Value)

	match, err := cond.Matches(25)
	require.NoError(t, err)
	require.True(t, match)

	match, err = cond.Matches("20")
	require.NoError(t, err)
	require.False(t, match)
}

func TestParseCondition_QuotedString(t *testing.T) {
	t.Parallel()

	cond, err := ParseCondition(`region == "emea"`)
	require.NoError(t, err)

	match, err := cond.Matches("emea")
	require.NoError(t, err)
	require.True(t, match)

	match, err = cond.Matches("apac")
	require.NoError(t, err)
	require.False(t, match)
}

func TestParseCondition_Invalid(t *testing.T) {
	t.Parallel()

	for _, expr := range []string{"age", "age ~= 3", "age > not-a-number"} {
		_, err := ParseCondition(expr)
		require.Error(t, err, "expression %q", expr)
	}
}

func TestConditionSQL(t *testing.T) {
	t.Parallel()

	quote := func(s string) string { return `"` + s + `"` }

	cond, err := ParseCondition("x == 'a''s'")
	require.NoError(t, err)
	require.Equal(t, `"x" = 'a''''s'`, cond.SQL(quote))

	cond, err = ParseCondition("n > 3")
	require.NoError(t, err)
	require.Equal(t, `"n" > 3`, cond.SQL(quote))
}
