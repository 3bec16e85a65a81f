package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/varmesh/varmesh/graph"
)

// Component is the conditional-distribution contract: a named random
// variable conditioned on named inputs. Concrete families (see the dist
// package) implement sampling, expected log-probability and entropy bounds;
// the JointModel composes them into a joint distribution.
//
// Random inputs are edges of the DAG: each maps a parameter name to the
// component supplying it, or nil for a free input of the enclosing model.
// Fixed inputs are plain numeric parameters baked into the component.
type Component interface {
	// Name uniquely identifies the component within a model.
	Name() string

	// Model returns the owning JointModel, nil before attachment.
	Model() *JointModel

	// Bind attaches the component to a model. A component belongs to exactly
	// one model; binding to a second fails with ErrForeignModel.
	Bind(m *JointModel) error

	// RandomInputs maps parameter names to their supplying components.
	// A nil value marks a free input of the enclosing model.
	RandomInputs() map[string]Component

	// FixedInputs maps parameter names to fixed (non-random) values.
	FixedInputs() map[string][]float64

	// Shape is the shape of the component's sampled output.
	Shape() graph.Shape

	// InputShape returns the expected shape of the named input parameter.
	InputShape(param string) (graph.Shape, error)

	// BuildSample builds (once) the symbolic sampled value from resolved
	// input nodes, returning the sample node and the randomness-plan entries
	// needed to realize it. Subsequent calls return the cached result.
	BuildSample(g *graph.Graph, inputs map[string]*graph.Node) (*graph.Node, graph.Plan, error)

	// SampledNode returns the cached symbolic sample, nil before BuildSample.
	SampledNode() *graph.Node

	// ExpectedLogProb builds the expected log-probability of the component
	// under the attached variational components: qs holds one entry per
	// random input parameter plus "result" for the component itself.
	ExpectedLogProb(g *graph.Graph, qs map[string]Component) (*graph.Node, error)

	// EntropyLowerBound builds a lower bound on the component's entropy,
	// parameterized by sampled values of its random inputs.
	EntropyLowerBound(g *graph.Graph, inputs map[string]*graph.Node) (*graph.Node, error)

	// DefaultVariational constructs the component's default approximating
	// family, or ErrNoDefaultVariational.
	DefaultVariational() (Component, error)

	// OptimizedParams materializes fitted parameter values, keyed by
	// parameter name. Components with nothing fitted return an empty map.
	OptimizedParams(sess *graph.Session, feed graph.Feed) (map[string][]float64, error)
}

// shortID returns a six-character random identifier for unnamed components
// and models.
func shortID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}

// BaseComponent bundles the bookkeeping shared by every component: identity,
// single-ownership model binding, and the built-once sample cache. Embed it
// in concrete families and supply the distribution-specific methods to
// satisfy Component.
type BaseComponent struct {
	name    string
	model   *JointModel
	sampled *graph.Node
	plan    graph.Plan
}

// NewBaseComponent constructs a BaseComponent, generating a short random
// name when none is given.
func NewBaseComponent(name string) BaseComponent {
	if name == "" {
		name = shortID()
	}
	return BaseComponent{name: name}
}

// Name returns the component's name.
func (b *BaseComponent) Name() string { return b.name }

// Model returns the owning JointModel, nil before attachment.
func (b *BaseComponent) Model() *JointModel { return b.model }

// Bind attaches the component to m, enforcing single ownership.
func (b *BaseComponent) Bind(m *JointModel) error {
	if b.model != nil && b.model != m {
		return fmt.Errorf("%w: %q is owned by %q", ErrForeignModel, b.name, b.model.Name())
	}
	b.model = m
	return nil
}

// SampledNode returns the cached symbolic sample, nil before BuildSample.
func (b *BaseComponent) SampledNode() *graph.Node { return b.sampled }

// CacheSample stores the built sample and its plan entries.
func (b *BaseComponent) CacheSample(n *graph.Node, p graph.Plan) {
	b.sampled = n
	b.plan = p
}

// CachedSample returns the previously built sample, if any.
func (b *BaseComponent) CachedSample() (*graph.Node, graph.Plan, bool) {
	return b.sampled, b.plan, b.sampled != nil
}
