package graph

import "math"

// AdamOptions configures the Adam optimizer.
type AdamOptions struct {
	// LearningRate is the base step size.
	LearningRate float64
	// Beta1 is the exponential decay rate for first-moment estimates.
	Beta1 float64
	// Beta2 is the exponential decay rate for second-moment estimates.
	Beta2 float64
	// Epsilon guards the denominator against division by zero.
	Epsilon float64
}

// Adam performs Adam gradient-descent updates over a fixed set of graph
// variables, mutating their values in place.
type Adam struct {
	vars []*Node
	opts AdamOptions
	m    [][]float64
	v    [][]float64
	t    int
}

// NewAdam constructs an optimizer over vars with optional overrides.
func NewAdam(vars []*Node, optFns ...func(o *AdamOptions)) *Adam {
	opts := AdamOptions{
		LearningRate: 0.001,
		Beta1:        0.9,
		Beta2:        0.999,
		Epsilon:      1e-8,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	a := &Adam{vars: vars, opts: opts}
	a.m = make([][]float64, len(vars))
	a.v = make([][]float64, len(vars))
	for i, n := range vars {
		a.m[i] = make([]float64, n.shape.Size())
		a.v[i] = make([]float64, n.shape.Size())
	}
	return a
}

// Step applies one descent update from the given gradients. Variables with
// no gradient entry are left untouched.
func (a *Adam) Step(grads map[*Node][]float64) {
	a.t++
	c1 := 1 - math.Pow(a.opts.Beta1, float64(a.t))
	c2 := 1 - math.Pow(a.opts.Beta2, float64(a.t))

	for i, n := range a.vars {
		g, ok := grads[n]
		if !ok {
			continue
		}
		m, v := a.m[i], a.v[i]
		for j := range g {
			m[j] = a.opts.Beta1*m[j] + (1-a.opts.Beta1)*g[j]
			v[j] = a.opts.Beta2*v[j] + (1-a.opts.Beta2)*g[j]*g[j]
			mHat := m[j] / c1
			vHat := v[j] / c2
			n.value[j] -= a.opts.LearningRate * mHat / (math.Sqrt(vHat) + a.opts.Epsilon)
		}
	}
}
