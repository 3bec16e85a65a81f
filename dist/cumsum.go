package dist

import (
	"fmt"

	"github.com/varmesh/varmesh/core"
	"github.com/varmesh/varmesh/graph"
)

// NoisyCumulativeSum is the random-walk family C = cumsum(A) + σ·ε: the
// observation at step t is the running total of the increments up to t plus
// isotropic Gaussian noise. Increments accumulate along the first axis.
type NoisyCumulativeSum struct {
	core.BaseComponent
	a   core.Component
	std float64
}

// NewNoisyCumulativeSum builds a noisy running total over the increments
// supplied by a, with noise standard deviation std.
func NewNoisyCumulativeSum(name string, a core.Component, std float64) *NoisyCumulativeSum {
	return &NoisyCumulativeSum{
		BaseComponent: core.NewBaseComponent(name),
		a:             a,
		std:           std,
	}
}

// RandomInputs implements core.Component.
func (c *NoisyCumulativeSum) RandomInputs() map[string]core.Component {
	return map[string]core.Component{"a": c.a}
}

// FixedInputs implements core.Component.
func (c *NoisyCumulativeSum) FixedInputs() map[string][]float64 {
	return map[string][]float64{"std": {c.std}}
}

// Shape implements core.Component; the walk has one value per increment.
func (c *NoisyCumulativeSum) Shape() graph.Shape { return c.a.Shape() }

// InputShape implements core.Component.
func (c *NoisyCumulativeSum) InputShape(param string) (graph.Shape, error) {
	if param != "a" {
		return nil, fmt.Errorf("%w: %q of noisy cumulative sum %q", core.ErrUnknownInput, param, c.Name())
	}
	return c.a.Shape(), nil
}

// BuildSample implements core.Component: sample = cumsum(A) + std * eps.
func (c *NoisyCumulativeSum) BuildSample(g *graph.Graph, inputs map[string]*graph.Node) (*graph.Node, graph.Plan, error) {
	if n, p, ok := c.CachedSample(); ok {
		return n, p, nil
	}

	a := inputs["a"]
	if a == nil {
		return nil, nil, fmt.Errorf("%w: increments of %q", core.ErrUnresolvedInput, c.Name())
	}

	eps := g.Placeholder(c.Name()+"_eps", c.Shape())
	node := graph.Add(graph.CumSum(a), graph.Mul(g.Scalar(c.std), eps))
	plan := graph.Plan{{Node: eps, Kind: graph.NoiseNormal}}
	c.CacheSample(node, plan)
	return node, plan, nil
}

// ExpectedLogProb implements core.Component.
func (c *NoisyCumulativeSum) ExpectedLogProb(g *graph.Graph, qs map[string]core.Component) (*graph.Node, error) {
	x, err := sampledNodeOf(qs, "result", c.Name())
	if err != nil {
		return nil, err
	}
	a, err := sampledNodeOf(qs, "a", c.Name())
	if err != nil {
		return nil, err
	}

	return gaussianLogProb(g, x, graph.CumSum(a), c.std, c.Shape().Size()), nil
}

// EntropyLowerBound implements core.Component.
func (c *NoisyCumulativeSum) EntropyLowerBound(g *graph.Graph, _ map[string]*graph.Node) (*graph.Node, error) {
	return g.Scalar(gaussianEntropy(c.Shape().Size(), c.std)), nil
}

// DefaultVariational implements core.Component.
func (c *NoisyCumulativeSum) DefaultVariational() (core.Component, error) {
	return NewMeanField("q_"+c.Name(), c.Shape()), nil
}

// OptimizedParams implements core.Component; nothing is fitted.
func (c *NoisyCumulativeSum) OptimizedParams(_ *graph.Session, _ graph.Feed) (map[string][]float64, error) {
	return map[string][]float64{}, nil
}
