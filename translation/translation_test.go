package translation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate_ComputesInDependencyOrder(t *testing.T) {
	// head.sum depends on body[0].value and body[1].value; each body
	// value is already present (as if set by an earlier reduction), so
	// this binding set is a single-node dependency graph.
	bindings := []Binding{
		{
			Dest:         AttrRef{NodeIndex: HeadIndex, Name: "sum"},
			Requirements: []AttrRef{{NodeIndex: 0, Name: "value"}, {NodeIndex: 1, Name: "value"}},
			Setter:       func(args []any) any { return args[0].(int) + args[1].(int) },
		},
	}
	head := NodeAttrs{}
	body := []NodeAttrs{{"value": 2}, {"value": 3}}

	require.NoError(t, Evaluate(bindings, head, body))
	assert.Equal(t, 5, head["sum"])
}

func TestEvaluate_ChainsBindingsWithinOneReduction(t *testing.T) {
	// head.doubled requires head.sum, which itself requires the body
	// values — Evaluate must run sum before doubled even though doubled
	// is listed first.
	bindings := []Binding{
		{
			Dest:         AttrRef{NodeIndex: HeadIndex, Name: "doubled"},
			Requirements: []AttrRef{{NodeIndex: HeadIndex, Name: "sum"}},
			Setter:       func(args []any) any { return args[0].(int) * 2 },
		},
		{
			Dest:         AttrRef{NodeIndex: HeadIndex, Name: "sum"},
			Requirements: []AttrRef{{NodeIndex: 0, Name: "value"}, {NodeIndex: 1, Name: "value"}},
			Setter:       func(args []any) any { return args[0].(int) + args[1].(int) },
		},
	}
	head := NodeAttrs{}
	body := []NodeAttrs{{"value": 4}, {"value": 6}}

	require.NoError(t, Evaluate(bindings, head, body))
	assert.Equal(t, 10, head["sum"])
	assert.Equal(t, 20, head["doubled"])
}

func TestEvaluate_DetectsDependencyCycle(t *testing.T) {
	bindings := []Binding{
		{
			Dest:         AttrRef{NodeIndex: HeadIndex, Name: "a"},
			Requirements: []AttrRef{{NodeIndex: HeadIndex, Name: "b"}},
			Setter:       func(args []any) any { return args[0] },
		},
		{
			Dest:         AttrRef{NodeIndex: HeadIndex, Name: "b"},
			Requirements: []AttrRef{{NodeIndex: HeadIndex, Name: "a"}},
			Setter:       func(args []any) any { return args[0] },
		},
	}
	err := Evaluate(bindings, NodeAttrs{}, nil)
	assert.Error(t, err)
}

func TestEvaluate_ErrorsOnMissingRequirement(t *testing.T) {
	bindings := []Binding{
		{
			Dest:         AttrRef{NodeIndex: HeadIndex, Name: "value"},
			Requirements: []AttrRef{{NodeIndex: 0, Name: "missing"}},
			Setter:       func(args []any) any { return args[0] },
		},
	}
	err := Evaluate(bindings, NodeAttrs{}, []NodeAttrs{{}})
	assert.Error(t, err)
}

func TestEvaluate_ErrorsOnOutOfRangeBodyIndex(t *testing.T) {
	bindings := []Binding{
		{
			Dest:         AttrRef{NodeIndex: HeadIndex, Name: "value"},
			Requirements: []AttrRef{{NodeIndex: 5, Name: "value"}},
			Setter:       func(args []any) any { return args[0] },
		},
	}
	err := Evaluate(bindings, NodeAttrs{}, []NodeAttrs{{"value": 1}})
	assert.Error(t, err)
}

func TestAttrRef_String(t *testing.T) {
	assert.Equal(t, "head.value", AttrRef{NodeIndex: HeadIndex, Name: "value"}.String())
	assert.Equal(t, "body[1].value", AttrRef{NodeIndex: 1, Name: "value"}.String())
}
