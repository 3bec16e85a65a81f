package graph

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Sentinel errors for graph evaluation.
var (
	// ErrMissingFeed indicates a placeholder was reached during evaluation
	// without a fed value.
	ErrMissingFeed = errors.New("graph: placeholder has no fed value")

	// ErrSessionClosed indicates an operation on a closed session.
	ErrSessionClosed = errors.New("graph: session is closed")

	// ErrBadNumerics indicates a NaN or Inf was produced during a checked
	// evaluation.
	ErrBadNumerics = errors.New("graph: non-finite value")

	// ErrNonScalarLoss indicates Gradients was asked to differentiate a
	// non-scalar node.
	ErrNonScalarLoss = errors.New("graph: loss must be scalar")
)

// Feed supplies concrete values for placeholder nodes during evaluation.
type Feed map[*Node][]float64

// Session evaluates a graph against concrete feeds. Each Run is independent:
// no values are cached across calls, so variables may be updated between
// runs. Sessions are scoped resources: acquire with NewSession, release with
// Close.
type Session struct {
	g      *Graph
	closed bool
}

// NewSession creates a session over g.
func NewSession(g *Graph) *Session { return &Session{g: g} }

// Close releases the session. Further calls fail with ErrSessionClosed.
func (s *Session) Close() error {
	s.closed = true
	return nil
}

// Run materializes the requested nodes against the feed, returning one value
// slice per fetch in order. Only ancestors of the fetched nodes are
// evaluated.
func (s *Session) Run(feed Feed, fetches ...*Node) ([][]float64, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	vals := make(map[int][]float64)
	out := make([][]float64, len(fetches))
	for i, n := range fetches {
		v, err := s.eval(n, feed, vals)
		if err != nil {
			return nil, err
		}
		res := make([]float64, len(v))
		copy(res, v)
		out[i] = res
	}
	return out, nil
}

// CheckNumerics evaluates root and fails with ErrBadNumerics if any node in
// its ancestry produced a NaN or Inf. Used as an optional diagnostics pass
// before optimizer steps.
func (s *Session) CheckNumerics(feed Feed, root *Node) error {
	if s.closed {
		return ErrSessionClosed
	}
	vals := make(map[int][]float64)
	if _, err := s.eval(root, feed, vals); err != nil {
		return err
	}
	for id, v := range vals {
		for _, x := range v {
			if math.IsNaN(x) || math.IsInf(x, 0) {
				return fmt.Errorf("%w: node %q", ErrBadNumerics, s.g.nodes[id].name)
			}
		}
	}
	return nil
}

// eval computes n's value, memoizing every intermediate in vals.
func (s *Session) eval(n *Node, feed Feed, vals map[int][]float64) ([]float64, error) {
	if v, ok := vals[n.id]; ok {
		return v, nil
	}

	in := make([][]float64, len(n.inputs))
	for i, dep := range n.inputs {
		v, err := s.eval(dep, feed, vals)
		if err != nil {
			return nil, err
		}
		in[i] = v
	}

	var v []float64
	switch n.op {
	case opConst, opVariable:
		v = n.value
	case opPlaceholder:
		fed, ok := feed[n]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingFeed, n.name)
		}
		if len(fed) != n.shape.Size() {
			return nil, fmt.Errorf("graph: fed value for %q has length %d, want %d", n.name, len(fed), n.shape.Size())
		}
		v = fed
	case opAdd:
		v = elemwise(in[0], in[1], func(a, b float64) float64 { return a + b })
	case opSub:
		v = elemwise(in[0], in[1], func(a, b float64) float64 { return a - b })
	case opMul:
		v = elemwise(in[0], in[1], func(a, b float64) float64 { return a * b })
	case opNeg:
		v = mapped(in[0], func(x float64) float64 { return -x })
	case opExp:
		v = mapped(in[0], math.Exp)
	case opLog:
		v = mapped(in[0], math.Log)
	case opSquare:
		v = mapped(in[0], func(x float64) float64 { return x * x })
	case opSum:
		v = []float64{floats.Sum(in[0])}
	case opMatMul:
		v = matmul(n.inputs[0].shape, n.inputs[1].shape, in[0], in[1])
	case opTranspose:
		v = transpose(n.inputs[0].shape, in[0])
	case opCumSum:
		v = cumsum(n.inputs[0].shape, in[0])
	default:
		return nil, fmt.Errorf("graph: cannot evaluate op %s", n.op)
	}

	vals[n.id] = v
	return v, nil
}

// elemwise applies f over two operands where either may be a broadcast
// single element.
func elemwise(a, b []float64, f func(a, b float64) float64) []float64 {
	switch {
	case len(a) == len(b):
		out := make([]float64, len(a))
		for i := range a {
			out[i] = f(a[i], b[i])
		}
		return out
	case len(a) == 1:
		out := make([]float64, len(b))
		for i := range b {
			out[i] = f(a[0], b[i])
		}
		return out
	default: // len(b) == 1, guaranteed by builder shape checks
		out := make([]float64, len(a))
		for i := range a {
			out[i] = f(a[i], b[0])
		}
		return out
	}
}

func mapped(a []float64, f func(float64) float64) []float64 {
	out := make([]float64, len(a))
	for i, x := range a {
		out[i] = f(x)
	}
	return out
}

func matmul(sa, sb Shape, a, b []float64) []float64 {
	m, k, n := sa[0], sa[1], sb[1]
	am := mat.NewDense(m, k, a)
	bm := mat.NewDense(k, n, b)
	out := mat.NewDense(m, n, nil)
	out.Mul(am, bm)
	return out.RawMatrix().Data
}

func transpose(s Shape, a []float64) []float64 {
	r, c := s[0], s[1]
	out := make([]float64, len(a))
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out[j*r+i] = a[i*c+j]
		}
	}
	return out
}

// cumsum accumulates along the first axis.
func cumsum(s Shape, a []float64) []float64 {
	out := make([]float64, len(a))
	copy(out, a)
	if len(s) == 1 {
		for i := 1; i < len(out); i++ {
			out[i] += out[i-1]
		}
		return out
	}
	r, c := s[0], s[1]
	for i := 1; i < r; i++ {
		for j := 0; j < c; j++ {
			out[i*c+j] += out[(i-1)*c+j]
		}
	}
	return out
}
