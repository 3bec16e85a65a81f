package core

import (
	"fmt"

	"github.com/varmesh/varmesh/graph"
)

// Observed is the trivial fixed-value component used to mark a variable as
// data: its sample is a constant, it contributes no entropy and carries no
// fitted parameters. Observe wraps values in an Observed automatically;
// construct one directly only to attach pre-built data as a custom
// variational component.
type Observed struct {
	BaseComponent
	shape graph.Shape
	value []float64
}

// NewObserved constructs a fixed-value component holding value (copied).
func NewObserved(name string, shape graph.Shape, value []float64) (*Observed, error) {
	if len(value) != shape.Size() {
		return nil, fmt.Errorf("%w: %q holds %d values, shape %v wants %d", ErrShapeMismatch, name, len(value), shape, shape.Size())
	}
	v := make([]float64, len(value))
	copy(v, value)
	return &Observed{
		BaseComponent: NewBaseComponent(name),
		shape:         shape,
		value:         v,
	}, nil
}

// Value returns the wrapped data.
func (o *Observed) Value() []float64 { return o.value }

// RandomInputs implements Component; an Observed has no inputs.
func (o *Observed) RandomInputs() map[string]Component { return nil }

// FixedInputs implements Component.
func (o *Observed) FixedInputs() map[string][]float64 {
	return map[string][]float64{"value": o.value}
}

// Shape implements Component.
func (o *Observed) Shape() graph.Shape { return o.shape }

// InputShape implements Component; an Observed has no inputs.
func (o *Observed) InputShape(param string) (graph.Shape, error) {
	return nil, fmt.Errorf("%w: observed %q has no input %q", ErrUnknownInput, o.Name(), param)
}

// BuildSample implements Component: the sample is the wrapped constant and
// requires no base randomness.
func (o *Observed) BuildSample(g *graph.Graph, _ map[string]*graph.Node) (*graph.Node, graph.Plan, error) {
	if n, p, ok := o.CachedSample(); ok {
		return n, p, nil
	}
	n := g.Const(o.Name(), o.shape, o.value)
	o.CacheSample(n, nil)
	return n, nil, nil
}

// ExpectedLogProb implements Component. An Observed carries no conditional
// density of its own; it only stands in for data on the variational side.
func (o *Observed) ExpectedLogProb(_ *graph.Graph, _ map[string]Component) (*graph.Node, error) {
	return nil, fmt.Errorf("core: observed %q has no conditional density", o.Name())
}

// EntropyLowerBound implements Component: a point mass has zero entropy.
func (o *Observed) EntropyLowerBound(g *graph.Graph, _ map[string]*graph.Node) (*graph.Node, error) {
	return g.Scalar(0), nil
}

// DefaultVariational implements Component; observed data is never
// marginalized.
func (o *Observed) DefaultVariational() (Component, error) {
	return nil, fmt.Errorf("%w: %q is observed", ErrNoDefaultVariational, o.Name())
}

// OptimizedParams implements Component; nothing is fitted.
func (o *Observed) OptimizedParams(_ *graph.Session, _ graph.Feed) (map[string][]float64, error) {
	return map[string][]float64{}, nil
}
