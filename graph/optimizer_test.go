package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdamMinimizesQuadratic(t *testing.T) {
	g := New()
	x := g.Variable("x", ScalarShape(), []float64{-4})
	loss := Square(Sub(x, g.Scalar(3)))

	sess := NewSession(g)
	defer sess.Close()

	opt := NewAdam(g.Variables(), func(o *AdamOptions) {
		o.LearningRate = 0.1
	})
	for i := 0; i < 500; i++ {
		grads, err := sess.Gradients(loss, nil)
		require.NoError(t, err)
		opt.Step(grads)
	}

	assert.InDelta(t, 3, x.Value()[0], 0.05)
}

func TestAdamSkipsVariablesWithoutGradient(t *testing.T) {
	g := New()
	x := g.Variable("x", ScalarShape(), []float64{1})
	y := g.Variable("y", ScalarShape(), []float64{7})
	loss := Square(x)

	sess := NewSession(g)
	defer sess.Close()

	opt := NewAdam(g.Variables())
	grads, err := sess.Gradients(loss, nil)
	require.NoError(t, err)
	opt.Step(grads)

	assert.NotEqual(t, 1.0, x.Value()[0])
	assert.Equal(t, 7.0, y.Value()[0])
}
