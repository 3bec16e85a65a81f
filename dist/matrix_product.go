package dist

import (
	"fmt"

	"github.com/varmesh/varmesh/core"
	"github.com/varmesh/varmesh/graph"
)

// NoisyMatrixProduct is the low-rank factorization family C = A·Bᵀ + σ·ε
// with ε standard normal: two (n,k) and (m,k) factors combined into an
// (n,m) observation with isotropic Gaussian noise.
type NoisyMatrixProduct struct {
	core.BaseComponent
	a, b  core.Component
	std   float64
	shape graph.Shape
}

// NewNoisyMatrixProduct combines factors a (n,k) and b (m,k) into an (n,m)
// noisy product with noise standard deviation std.
func NewNoisyMatrixProduct(name string, a, b core.Component, std float64) (*NoisyMatrixProduct, error) {
	sa, sb := a.Shape(), b.Shape()
	if len(sa) != 2 || len(sb) != 2 {
		return nil, fmt.Errorf("dist: noisy matrix product %q requires matrix factors, got %v and %v", name, sa, sb)
	}
	if sa[1] != sb[1] {
		return nil, fmt.Errorf("dist: noisy matrix product %q: factor ranks disagree, %v vs %v", name, sa, sb)
	}
	return &NoisyMatrixProduct{
		BaseComponent: core.NewBaseComponent(name),
		a:             a,
		b:             b,
		std:           std,
		shape:         graph.Shape{sa[0], sb[0]},
	}, nil
}

// RandomInputs implements core.Component.
func (c *NoisyMatrixProduct) RandomInputs() map[string]core.Component {
	return map[string]core.Component{"a": c.a, "b": c.b}
}

// FixedInputs implements core.Component.
func (c *NoisyMatrixProduct) FixedInputs() map[string][]float64 {
	return map[string][]float64{"std": {c.std}}
}

// Shape implements core.Component.
func (c *NoisyMatrixProduct) Shape() graph.Shape { return c.shape }

// InputShape implements core.Component.
func (c *NoisyMatrixProduct) InputShape(param string) (graph.Shape, error) {
	switch param {
	case "a":
		return c.a.Shape(), nil
	case "b":
		return c.b.Shape(), nil
	default:
		return nil, fmt.Errorf("%w: %q of noisy matrix product %q", core.ErrUnknownInput, param, c.Name())
	}
}

// BuildSample implements core.Component: sample = A·Bᵀ + std * eps.
func (c *NoisyMatrixProduct) BuildSample(g *graph.Graph, inputs map[string]*graph.Node) (*graph.Node, graph.Plan, error) {
	if n, p, ok := c.CachedSample(); ok {
		return n, p, nil
	}

	a, b := inputs["a"], inputs["b"]
	if a == nil || b == nil {
		return nil, nil, fmt.Errorf("%w: factors of %q", core.ErrUnresolvedInput, c.Name())
	}

	mean := graph.MatMul(a, graph.Transpose(b))
	eps := g.Placeholder(c.Name()+"_eps", c.shape)
	node := graph.Add(mean, graph.Mul(g.Scalar(c.std), eps))
	plan := graph.Plan{{Node: eps, Kind: graph.NoiseNormal}}
	c.CacheSample(node, plan)
	return node, plan, nil
}

// ExpectedLogProb implements core.Component: the Gaussian log-density of
// the result sample around the product of the factor samples.
func (c *NoisyMatrixProduct) ExpectedLogProb(g *graph.Graph, qs map[string]core.Component) (*graph.Node, error) {
	x, err := sampledNodeOf(qs, "result", c.Name())
	if err != nil {
		return nil, err
	}
	a, err := sampledNodeOf(qs, "a", c.Name())
	if err != nil {
		return nil, err
	}
	b, err := sampledNodeOf(qs, "b", c.Name())
	if err != nil {
		return nil, err
	}

	mean := graph.MatMul(a, graph.Transpose(b))
	return gaussianLogProb(g, x, mean, c.std, c.shape.Size()), nil
}

// EntropyLowerBound implements core.Component: the noise entropy, constant
// in the factors.
func (c *NoisyMatrixProduct) EntropyLowerBound(g *graph.Graph, _ map[string]*graph.Node) (*graph.Node, error) {
	return g.Scalar(gaussianEntropy(c.shape.Size(), c.std)), nil
}

// DefaultVariational implements core.Component.
func (c *NoisyMatrixProduct) DefaultVariational() (core.Component, error) {
	return NewMeanField("q_"+c.Name(), c.shape), nil
}

// OptimizedParams implements core.Component; nothing is fitted.
func (c *NoisyMatrixProduct) OptimizedParams(_ *graph.Session, _ graph.Feed) (map[string][]float64, error) {
	return map[string][]float64{}, nil
}
