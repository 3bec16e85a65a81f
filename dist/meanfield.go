package dist

import (
	"fmt"
	"math"

	"github.com/varmesh/varmesh/core"
	"github.com/varmesh/varmesh/graph"
)

// MeanFieldOptions configures a MeanField component.
type MeanFieldOptions struct {
	// InitMean initializes the trainable mean; zeros when nil.
	InitMean []float64
	// InitLogStd initializes the trainable log standard deviation; zeros
	// (std 1) when nil.
	InitLogStd []float64
}

// MeanField is a diagonal Gaussian with trainable mean and log standard
// deviation, the default variational family for continuous variables. Its
// sample is mean + exp(logStd) * eps, so gradients of the ELBO flow into
// both parameter vectors through the reparameterized sample.
type MeanField struct {
	core.BaseComponent
	shape      graph.Shape
	initMean   []float64
	initLogStd []float64

	meanVar   *graph.Node
	logStdVar *graph.Node
	stdNode   *graph.Node
}

// NewMeanField constructs a mean-field Gaussian over the given shape.
func NewMeanField(name string, shape graph.Shape, optFns ...func(o *MeanFieldOptions)) *MeanField {
	opts := MeanFieldOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	n := shape.Size()
	if opts.InitMean == nil {
		opts.InitMean = make([]float64, n)
	}
	if opts.InitLogStd == nil {
		opts.InitLogStd = make([]float64, n)
	}
	return &MeanField{
		BaseComponent: core.NewBaseComponent(name),
		shape:         shape,
		initMean:      opts.InitMean,
		initLogStd:    opts.InitLogStd,
	}
}

// RandomInputs implements core.Component; a mean-field factor has no
// upstream dependencies.
func (c *MeanField) RandomInputs() map[string]core.Component { return nil }

// FixedInputs implements core.Component.
func (c *MeanField) FixedInputs() map[string][]float64 { return nil }

// Shape implements core.Component.
func (c *MeanField) Shape() graph.Shape { return c.shape }

// InputShape implements core.Component.
func (c *MeanField) InputShape(param string) (graph.Shape, error) {
	return nil, fmt.Errorf("%w: mean-field %q has no input %q", core.ErrUnknownInput, c.Name(), param)
}

// BuildSample implements core.Component: registers the trainable variables
// and builds the reparameterized sample mean + exp(logStd) * eps.
func (c *MeanField) BuildSample(g *graph.Graph, _ map[string]*graph.Node) (*graph.Node, graph.Plan, error) {
	if n, p, ok := c.CachedSample(); ok {
		return n, p, nil
	}

	c.meanVar = g.Variable(c.Name()+"_mean", c.shape, c.initMean)
	c.logStdVar = g.Variable(c.Name()+"_log_std", c.shape, c.initLogStd)
	c.stdNode = graph.Exp(c.logStdVar)

	eps := g.Placeholder(c.Name()+"_eps", c.shape)
	node := graph.Add(c.meanVar, graph.Mul(c.stdNode, eps))
	plan := graph.Plan{{Node: eps, Kind: graph.NoiseNormal}}
	c.CacheSample(node, plan)
	return node, plan, nil
}

// ExpectedLogProb implements core.Component. A mean-field factor only
// appears on the variational side, where expected log-probabilities are
// never requested.
func (c *MeanField) ExpectedLogProb(_ *graph.Graph, _ map[string]core.Component) (*graph.Node, error) {
	return nil, fmt.Errorf("dist: mean-field %q is a variational-only family", c.Name())
}

// EntropyLowerBound implements core.Component: the exact entropy of a
// diagonal Gaussian, sum(logStd) + n/2 * (1 + log 2π), differentiable in
// logStd.
func (c *MeanField) EntropyLowerBound(g *graph.Graph, _ map[string]*graph.Node) (*graph.Node, error) {
	if c.logStdVar == nil {
		return nil, fmt.Errorf("%w: mean-field %q", core.ErrNotSampled, c.Name())
	}
	n := float64(c.shape.Size())
	return graph.Add(graph.Sum(c.logStdVar), g.Scalar(0.5*n*(1+math.Log(2*math.Pi)))), nil
}

// DefaultVariational implements core.Component; the family is itself an
// approximating distribution.
func (c *MeanField) DefaultVariational() (core.Component, error) {
	return nil, fmt.Errorf("%w: mean-field %q", core.ErrNoDefaultVariational, c.Name())
}

// OptimizedParams implements core.Component: materializes the fitted mean
// and standard deviation.
func (c *MeanField) OptimizedParams(sess *graph.Session, feed graph.Feed) (map[string][]float64, error) {
	if c.meanVar == nil {
		return nil, fmt.Errorf("%w: mean-field %q", core.ErrNotSampled, c.Name())
	}
	vals, err := sess.Run(feed, c.meanVar, c.stdNode)
	if err != nil {
		return nil, err
	}
	return map[string][]float64{"mean": vals[0], "std": vals[1]}, nil
}
