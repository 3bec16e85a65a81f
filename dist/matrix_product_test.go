package dist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varmesh/varmesh/core"
	"github.com/varmesh/varmesh/graph"
)

func TestNoisyMatrixProductValidation(t *testing.T) {
	vec := NewGaussian("v", graph.Shape{3})
	mat := NewGaussian("m", graph.Shape{3, 2})

	_, err := NewNoisyMatrixProduct("C", vec, mat, 0.1)
	require.Error(t, err)

	other := NewGaussian("o", graph.Shape{4, 5})
	_, err = NewNoisyMatrixProduct("C", mat, other, 0.1)
	require.Error(t, err)

	b := NewGaussian("b", graph.Shape{4, 2})
	c, err := NewNoisyMatrixProduct("C", mat, b, 0.1)
	require.NoError(t, err)
	assert.Equal(t, graph.Shape{3, 4}, c.Shape())
}

func TestNoisyMatrixProductSample(t *testing.T) {
	g := graph.New()
	a := NewGaussian("A", graph.Shape{2, 2})
	b := NewGaussian("B", graph.Shape{2, 2})
	c, err := NewNoisyMatrixProduct("C", a, b, 0.5)
	require.NoError(t, err)

	aN := g.Const("a", graph.Shape{2, 2}, []float64{1, 2, 3, 4})
	bN := g.Const("b", graph.Shape{2, 2}, []float64{5, 6, 7, 8})

	_, _, err = c.BuildSample(g, nil)
	require.ErrorIs(t, err, core.ErrUnresolvedInput)

	node, plan, err := c.BuildSample(g, map[string]*graph.Node{"a": aN, "b": bN})
	require.NoError(t, err)
	require.Len(t, plan, 1)

	// With zero noise the sample is exactly A·Bᵀ.
	got := evalNode(t, g, node, graph.Feed{plan[0].Node: []float64{0, 0, 0, 0}})
	assert.Equal(t, []float64{17, 23, 39, 53}, got)

	// Noise enters scaled by the fixed standard deviation.
	got = evalNode(t, g, node, graph.Feed{plan[0].Node: []float64{2, 0, 0, -2}})
	assert.Equal(t, []float64{18, 23, 39, 52}, got)
}

func TestNoisyMatrixProductInputShapes(t *testing.T) {
	a := NewGaussian("A", graph.Shape{3, 2})
	b := NewGaussian("B", graph.Shape{4, 2})
	c, err := NewNoisyMatrixProduct("C", a, b, 0.1)
	require.NoError(t, err)

	assert.Len(t, c.RandomInputs(), 2)

	shape, err := c.InputShape("a")
	require.NoError(t, err)
	assert.Equal(t, graph.Shape{3, 2}, shape)

	shape, err = c.InputShape("b")
	require.NoError(t, err)
	assert.Equal(t, graph.Shape{4, 2}, shape)

	_, err = c.InputShape("std")
	require.ErrorIs(t, err, core.ErrUnknownInput)
}
