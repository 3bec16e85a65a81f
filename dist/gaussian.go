package dist

import (
	"fmt"
	"math"

	"github.com/varmesh/varmesh/core"
	"github.com/varmesh/varmesh/graph"
)

// GaussianOptions configures a Gaussian component.
type GaussianOptions struct {
	// Mean is a fixed scalar mean, broadcast across the shape. Ignored when
	// MeanFrom is set.
	Mean float64
	// MeanFrom supplies the mean from an upstream component (a DAG edge).
	MeanFrom core.Component
	// Std is the fixed scalar standard deviation.
	Std float64
}

// Gaussian is a normal random variable with a fixed standard deviation and
// a mean that is either a fixed scalar or the output of an upstream
// component.
type Gaussian struct {
	core.BaseComponent
	shape    graph.Shape
	mean     float64
	meanFrom core.Component
	std      float64
}

// NewGaussian constructs a Gaussian over the given shape. Defaults are mean
// 0 and standard deviation 1.
func NewGaussian(name string, shape graph.Shape, optFns ...func(o *GaussianOptions)) *Gaussian {
	opts := GaussianOptions{Mean: 0, Std: 1}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Gaussian{
		BaseComponent: core.NewBaseComponent(name),
		shape:         shape,
		mean:          opts.Mean,
		meanFrom:      opts.MeanFrom,
		std:           opts.Std,
	}
}

// RandomInputs implements core.Component.
func (c *Gaussian) RandomInputs() map[string]core.Component {
	if c.meanFrom == nil {
		return nil
	}
	return map[string]core.Component{"mean": c.meanFrom}
}

// FixedInputs implements core.Component.
func (c *Gaussian) FixedInputs() map[string][]float64 {
	fixed := map[string][]float64{"std": {c.std}}
	if c.meanFrom == nil {
		fixed["mean"] = []float64{c.mean}
	}
	return fixed
}

// Shape implements core.Component.
func (c *Gaussian) Shape() graph.Shape { return c.shape }

// InputShape implements core.Component. The mean may be the full shape or a
// single broadcast element; the declared shape is the output shape.
func (c *Gaussian) InputShape(param string) (graph.Shape, error) {
	if param != "mean" {
		return nil, fmt.Errorf("%w: %q of gaussian %q", core.ErrUnknownInput, param, c.Name())
	}
	return c.shape, nil
}

// BuildSample implements core.Component: sample = mean + std * eps with eps
// standard normal (reparameterized).
func (c *Gaussian) BuildSample(g *graph.Graph, inputs map[string]*graph.Node) (*graph.Node, graph.Plan, error) {
	if n, p, ok := c.CachedSample(); ok {
		return n, p, nil
	}

	mean, err := c.meanNode(g, inputs)
	if err != nil {
		return nil, nil, err
	}

	eps := g.Placeholder(c.Name()+"_eps", c.shape)
	node := graph.Add(mean, graph.Mul(g.Scalar(c.std), eps))
	plan := graph.Plan{{Node: eps, Kind: graph.NoiseNormal}}
	c.CacheSample(node, plan)
	return node, plan, nil
}

func (c *Gaussian) meanNode(g *graph.Graph, inputs map[string]*graph.Node) (*graph.Node, error) {
	if c.meanFrom == nil {
		return g.Const(c.Name()+"_mean", graph.ScalarShape(), []float64{c.mean}), nil
	}
	mean, ok := inputs["mean"]
	if !ok || mean == nil {
		return nil, fmt.Errorf("%w: %q of gaussian %q", core.ErrUnresolvedInput, "mean", c.Name())
	}
	return mean, nil
}

// ExpectedLogProb implements core.Component: the log-density of the
// variational sample of this variable around the variational sample of its
// mean, a single-sample estimate of E_q[log p].
func (c *Gaussian) ExpectedLogProb(g *graph.Graph, qs map[string]core.Component) (*graph.Node, error) {
	x, err := sampledNodeOf(qs, "result", c.Name())
	if err != nil {
		return nil, err
	}

	var mean *graph.Node
	if c.meanFrom == nil {
		mean = g.Scalar(c.mean)
	} else {
		if mean, err = sampledNodeOf(qs, "mean", c.Name()); err != nil {
			return nil, err
		}
	}

	return gaussianLogProb(g, x, mean, c.std, c.shape.Size()), nil
}

// EntropyLowerBound implements core.Component. A Gaussian with fixed
// standard deviation has constant entropy regardless of its mean.
func (c *Gaussian) EntropyLowerBound(g *graph.Graph, _ map[string]*graph.Node) (*graph.Node, error) {
	return g.Scalar(gaussianEntropy(c.shape.Size(), c.std)), nil
}

// DefaultVariational implements core.Component: a trainable mean-field
// Gaussian of the same shape.
func (c *Gaussian) DefaultVariational() (core.Component, error) {
	return NewMeanField("q_"+c.Name(), c.shape), nil
}

// OptimizedParams implements core.Component; a fixed-parameter Gaussian has
// nothing fitted.
func (c *Gaussian) OptimizedParams(_ *graph.Session, _ graph.Feed) (map[string][]float64, error) {
	return map[string][]float64{}, nil
}

// sampledNodeOf fetches the cached sample of the variational component
// registered under param, with identifying context on failure.
func sampledNodeOf(qs map[string]core.Component, param, owner string) (*graph.Node, error) {
	q, ok := qs[param]
	if !ok {
		return nil, fmt.Errorf("%w: %q of %q", core.ErrMissingVariational, param, owner)
	}
	n := q.SampledNode()
	if n == nil {
		return nil, fmt.Errorf("%w: variational %q for %q of %q", core.ErrNotSampled, q.Name(), param, owner)
	}
	return n, nil
}

// gaussianLogProb builds sum_i log N(x_i; mean_i, std) as a scalar node.
func gaussianLogProb(g *graph.Graph, x, mean *graph.Node, std float64, n int) *graph.Node {
	quad := graph.Mul(g.Scalar(-1/(2*std*std)), graph.Sum(graph.Square(graph.Sub(x, mean))))
	norm := float64(n) * (math.Log(std) + 0.5*math.Log(2*math.Pi))
	return graph.Sub(quad, g.Scalar(norm))
}

// gaussianEntropy is the exact entropy of an n-element isotropic Gaussian.
func gaussianEntropy(n int, std float64) float64 {
	return float64(n) * (0.5*math.Log(2*math.Pi*math.E) + math.Log(std))
}
