package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run1(t *testing.T, n *Node, feed Feed) []float64 {
	t.Helper()
	sess := NewSession(n.g)
	defer sess.Close()
	vals, err := sess.Run(feed, n)
	require.NoError(t, err)
	return vals[0]
}

func TestShapeSize(t *testing.T) {
	assert.Equal(t, 1, ScalarShape().Size())
	assert.Equal(t, 6, Shape{2, 3}.Size())
	assert.True(t, Shape{2, 3}.Equal(Shape{2, 3}))
	assert.False(t, Shape{2, 3}.Equal(Shape{3, 2}))
}

func TestElementwiseOps(t *testing.T) {
	g := New()
	a := g.Const("a", Shape{3}, []float64{1, 2, 3})
	b := g.Const("b", Shape{3}, []float64{4, 5, 6})

	assert.Equal(t, []float64{5, 7, 9}, run1(t, Add(a, b), nil))
	assert.Equal(t, []float64{-3, -3, -3}, run1(t, Sub(a, b), nil))
	assert.Equal(t, []float64{4, 10, 18}, run1(t, Mul(a, b), nil))
	assert.Equal(t, []float64{-1, -2, -3}, run1(t, Neg(a), nil))
	assert.Equal(t, []float64{1, 4, 9}, run1(t, Square(a), nil))
	assert.Equal(t, []float64{6}, run1(t, Sum(a), nil))
}

func TestBroadcast(t *testing.T) {
	g := New()
	a := g.Const("a", Shape{3}, []float64{1, 2, 3})
	s := g.Scalar(10)

	assert.Equal(t, []float64{11, 12, 13}, run1(t, Add(a, s), nil))
	assert.Equal(t, []float64{11, 12, 13}, run1(t, Add(s, a), nil))
	assert.Equal(t, []float64{9, 8, 7}, run1(t, Sub(s, a), nil))
	assert.Equal(t, []float64{10, 20, 30}, run1(t, Mul(a, s), nil))
}

func TestExpLog(t *testing.T) {
	g := New()
	a := g.Const("a", Shape{2}, []float64{0, 1})

	got := run1(t, Exp(a), nil)
	assert.InDelta(t, 1, got[0], 1e-12)
	assert.InDelta(t, 2.718281828459045, got[1], 1e-12)

	back := run1(t, Log(Exp(a)), nil)
	assert.InDelta(t, 0, back[0], 1e-12)
	assert.InDelta(t, 1, back[1], 1e-12)
}

func TestMatMulTranspose(t *testing.T) {
	g := New()
	a := g.Const("a", Shape{2, 3}, []float64{1, 2, 3, 4, 5, 6})
	b := g.Const("b", Shape{3, 2}, []float64{7, 8, 9, 10, 11, 12})

	assert.Equal(t, []float64{58, 64, 139, 154}, run1(t, MatMul(a, b), nil))
	assert.Equal(t, []float64{1, 4, 2, 5, 3, 6}, run1(t, Transpose(a), nil))

	// (A·B)ᵀ = Bᵀ·Aᵀ
	lhs := run1(t, Transpose(MatMul(a, b)), nil)
	rhs := run1(t, MatMul(Transpose(b), Transpose(a)), nil)
	assert.Equal(t, rhs, lhs)
}

func TestCumSum(t *testing.T) {
	g := New()
	v := g.Const("v", Shape{4}, []float64{1, 2, 3, 4})
	assert.Equal(t, []float64{1, 3, 6, 10}, run1(t, CumSum(v), nil))

	m := g.Const("m", Shape{3, 2}, []float64{1, 10, 2, 20, 3, 30})
	assert.Equal(t, []float64{1, 10, 3, 30, 6, 60}, run1(t, CumSum(m), nil))
}

func TestPlaceholderFeed(t *testing.T) {
	g := New()
	p := g.Placeholder("eps", Shape{2})
	n := Mul(p, g.Scalar(2))

	sess := NewSession(g)
	defer sess.Close()

	_, err := sess.Run(nil, n)
	require.ErrorIs(t, err, ErrMissingFeed)

	_, err = sess.Run(Feed{p: []float64{1}}, n)
	require.Error(t, err) // wrong length

	vals, err := sess.Run(Feed{p: []float64{1, 2}}, n)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 4}, vals[0])
}

func TestVariablesReportCurrentValue(t *testing.T) {
	g := New()
	v := g.Variable("w", Shape{2}, []float64{1, 2})
	n := Sum(v)

	assert.Equal(t, []float64{3}, run1(t, n, nil))

	v.Value()[0] = 10 // optimizer-style in-place update
	assert.Equal(t, []float64{12}, run1(t, n, nil))
	require.Len(t, g.Variables(), 1)
}

func TestShapeMismatchPanics(t *testing.T) {
	g := New()
	a := g.Const("a", Shape{3}, []float64{1, 2, 3})
	b := g.Const("b", Shape{2}, []float64{1, 2})

	assert.Panics(t, func() { Add(a, b) })
	assert.Panics(t, func() { MatMul(a, b) })
	assert.Panics(t, func() { Transpose(a) })
	assert.Panics(t, func() { g.Const("c", Shape{2}, []float64{1}) })
}

func TestSessionClosed(t *testing.T) {
	g := New()
	n := g.Scalar(1)
	sess := NewSession(g)
	require.NoError(t, sess.Close())

	_, err := sess.Run(nil, n)
	require.ErrorIs(t, err, ErrSessionClosed)
}

func TestCheckNumerics(t *testing.T) {
	g := New()
	bad := Log(g.Scalar(-1)) // NaN

	sess := NewSession(g)
	defer sess.Close()
	require.ErrorIs(t, sess.CheckNumerics(nil, bad), ErrBadNumerics)

	ok := Log(g.Scalar(2))
	require.NoError(t, sess.CheckNumerics(nil, ok))
}
