package metric

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigurationID_IgnoresKwargOrder(t *testing.T) {
	t.Parallel()

	a := NewConfiguration("column_values.increasing", Kwargs{"column": "a", "row_condition": "x > 1"}, Kwargs{"strictly": true})
	b := NewConfiguration("column_values.increasing", Kwargs{"row_condition": "x > 1", "column": "a"}, Kwargs{"strictly": true})

	require.Equal(t, a.ID(), b.ID())
}

func TestConfigurationID_DistinguishesValueKwargs(t *testing.T) {
	t.Parallel()

	strict := NewConfiguration("m", Kwargs{"column": "a"}, Kwargs{"strictly": true})
	loose := NewConfiguration("m", Kwargs{"column": "a"}, Kwargs{"strictly": false})

	require.NotEqual(t, strict.ID(), loose.ID())
}

func TestConfigurationID_DistinguishesDomainKwargs(t *testing.T) {
	t.Parallel()

	a := NewConfiguration("m", Kwargs{"column": "a"}, nil)
	b := NewConfiguration("m", Kwargs{"column": "b"}, nil)

	require.NotEqual(t, a.ID(), b.ID())
}

func TestNewConfiguration_ClonesKwargs(t *testing.T) {
	t.Parallel()

	domain := Kwargs{"column": "a"}
	cfg := NewConfiguration("m", domain, nil)
	id := cfg.ID()

	domain["column"] = "mutated"

	require.Equal(t, id, cfg.ID())
}

func TestKwargsWithout_KeepsRestrictionFields(t *testing.T) {
	t.Parallel()

	domain := Kwargs{"column": "a", "row_condition": "x > 1", "batch_id": "b1"}
	rewritten := domain.Without("column")

	require.NotContains(t, rewritten, "column")
	require.Equal(t, "x > 1", rewritten["row_condition"])
	require.Equal(t, "b1", rewritten["batch_id"])

	// The original is untouched.
	require.Equal(t, "a", domain["column"])
}

func TestKwargsCanonical_NestedValues(t *testing.T) {
	t.Parallel()

	a := Kwargs{"filter": map[string]any{"x": 1, "y": 2}, "list": []any{"p", "q"}}
	b := Kwargs{"list": []any{"p", "q"}, "filter": map[string]any{"y": 2, "x": 1}}

	require.Equal(t, a.canonical(), b.canonical())
}
