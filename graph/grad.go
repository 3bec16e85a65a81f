package graph

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Gradients computes d(loss)/d(v) for every trainable variable v that loss
// depends on, using reverse-mode accumulation over one forward evaluation.
// The loss must be scalar.
func (s *Session) Gradients(loss *Node, feed Feed) (map[*Node][]float64, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	if loss.shape.Size() != 1 {
		return nil, ErrNonScalarLoss
	}

	vals := make(map[int][]float64)
	if _, err := s.eval(loss, feed, vals); err != nil {
		return nil, err
	}

	adj := make(map[int][]float64)
	adj[loss.id] = []float64{1}

	// Node ids are creation-ordered, so a reverse sweep visits every node
	// after all of its consumers.
	for i := loss.id; i >= 0; i-- {
		n := s.g.nodes[i]
		g, ok := adj[n.id]
		if !ok {
			continue
		}
		switch n.op {
		case opAdd:
			accumulate(adj, n.inputs[0], g)
			accumulate(adj, n.inputs[1], g)
		case opSub:
			accumulate(adj, n.inputs[0], g)
			accumulate(adj, n.inputs[1], scaled(g, -1))
		case opMul:
			accumulate(adj, n.inputs[0], bcastMul(g, vals[n.inputs[1].id]))
			accumulate(adj, n.inputs[1], bcastMul(g, vals[n.inputs[0].id]))
		case opNeg:
			accumulate(adj, n.inputs[0], scaled(g, -1))
		case opExp:
			accumulate(adj, n.inputs[0], bcastMul(g, vals[n.id]))
		case opLog:
			accumulate(adj, n.inputs[0], bcastDiv(g, vals[n.inputs[0].id]))
		case opSquare:
			accumulate(adj, n.inputs[0], scaled(bcastMul(g, vals[n.inputs[0].id]), 2))
		case opSum:
			in := n.inputs[0]
			spread := make([]float64, in.shape.Size())
			for j := range spread {
				spread[j] = g[0]
			}
			accumulate(adj, in, spread)
		case opMatMul:
			a, b := n.inputs[0], n.inputs[1]
			m, k, nn := a.shape[0], a.shape[1], b.shape[1]
			gm := mat.NewDense(m, nn, g)
			am := mat.NewDense(m, k, vals[a.id])
			bm := mat.NewDense(k, nn, vals[b.id])
			da := mat.NewDense(m, k, nil)
			da.Mul(gm, bm.T())
			db := mat.NewDense(k, nn, nil)
			db.Mul(am.T(), gm)
			accumulate(adj, a, da.RawMatrix().Data)
			accumulate(adj, b, db.RawMatrix().Data)
		case opTranspose:
			accumulate(adj, n.inputs[0], transpose(n.shape, g))
		case opCumSum:
			accumulate(adj, n.inputs[0], reverseCumsum(n.shape, g))
		}
	}

	grads := make(map[*Node][]float64)
	for _, v := range s.g.variables {
		if gv, ok := adj[v.id]; ok {
			grads[v] = gv
		}
	}
	return grads, nil
}

// accumulate adds grad into the adjoint of in, summing a broadcast
// contribution down to a single element when in was broadcast upward.
func accumulate(adj map[int][]float64, in *Node, grad []float64) {
	if in.shape.Size() == 1 && len(grad) > 1 {
		grad = []float64{floats.Sum(grad)}
	}
	if cur, ok := adj[in.id]; ok {
		floats.Add(cur, grad)
		return
	}
	cp := make([]float64, len(grad))
	copy(cp, grad)
	adj[in.id] = cp
}

func scaled(a []float64, c float64) []float64 {
	out := make([]float64, len(a))
	copy(out, a)
	floats.Scale(c, out)
	return out
}

// bcastMul multiplies g (the out-shaped adjoint) by an operand value that is
// either out-shaped or a single broadcast element.
func bcastMul(g, v []float64) []float64 {
	if len(v) == 1 {
		return scaled(g, v[0])
	}
	out := make([]float64, len(g))
	for i := range g {
		out[i] = g[i] * v[i]
	}
	return out
}

func bcastDiv(g, v []float64) []float64 {
	if len(v) == 1 {
		return scaled(g, 1/v[0])
	}
	out := make([]float64, len(g))
	for i := range g {
		out[i] = g[i] / v[i]
	}
	return out
}

// reverseCumsum is the adjoint of cumsum along the first axis: a suffix sum.
func reverseCumsum(s Shape, g []float64) []float64 {
	out := make([]float64, len(g))
	copy(out, g)
	if len(s) == 1 {
		for i := len(out) - 2; i >= 0; i-- {
			out[i] += out[i+1]
		}
		return out
	}
	r, c := s[0], s[1]
	for i := r - 2; i >= 0; i-- {
		for j := 0; j < c; j++ {
			out[i*c+j] += out[(i+1)*c+j]
		}
	}
	return out
}
