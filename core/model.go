package core

import (
	"fmt"
	"sort"

	"github.com/varmesh/varmesh/graph"

	"github.com/varmesh/varmesh/logging"
)

// FreeInput identifies an unresolved random input of a JointModel: the
// member component that declared it and the parameter name it feeds.
type FreeInput struct {
	Component Component
	Param     string
}

// Key returns the feed key for this free input.
func (f FreeInput) Key() string { return f.Component.Name() + "." + f.Param }

// Options configures a JointModel.
type Options struct {
	// Name identifies the model; a short random name is generated if empty.
	Name string
	// Logger receives training diagnostics. Defaults to NoOpLogger.
	Logger logging.Logger
}

// JointModel is the DAG container: an ordered list of components whose
// insertion order is their topological order, plus the bookkeeping that
// classifies each output as latent (marginalized by a variational
// component) or observed.
//
// Construction is single-threaded and monotonic: components are only ever
// added, outputs only ever shrink. Once sampling or training has begun the
// model must be treated as immutable.
type JointModel struct {
	name   string
	logger logging.Logger

	g *graph.Graph

	components []Component
	index      map[string]int

	freeInputs []FreeInput

	marginalizations map[string]Component // variable name -> variational component
	margOrder        []string             // registration order of marginalizations
	margReverse      map[string]string    // variational name -> variable name

	vm       *JointModel
	elbo     *graph.Node
	elboPlan graph.Plan
}

// NewJointModel creates an empty model with optional overrides.
func NewJointModel(optFns ...func(o *Options)) *JointModel {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Name == "" {
		opts.Name = shortID()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &JointModel{
		name:             opts.Name,
		logger:           opts.Logger,
		index:            make(map[string]int),
		marginalizations: make(map[string]Component),
		margReverse:      make(map[string]string),
	}
}

// Name returns the model's name.
func (m *JointModel) Name() string { return m.name }

// Graph returns the model's computation graph, creating it on first use.
// The variational model shares this graph so ELBO terms can mix variational
// samples with model densities.
func (m *JointModel) Graph() *graph.Graph {
	if m.g == nil {
		m.g = graph.New()
	}
	return m.g
}

// Components returns the model's components in topological order.
func (m *JointModel) Components() []Component {
	out := make([]Component, len(m.components))
	copy(out, m.components)
	return out
}

// FreeInputs returns the model's unresolved random inputs in registration
// order.
func (m *JointModel) FreeInputs() []FreeInput {
	out := make([]FreeInput, len(m.freeInputs))
	copy(out, m.freeInputs)
	return out
}

// contains reports whether c is a member of this model.
func (m *JointModel) contains(c Component) bool {
	idx, ok := m.index[c.Name()]
	return ok && m.components[idx] == c
}

// sortedParams returns the random-input parameter names of c in a stable
// order.
func sortedParams(c Component) []string {
	ri := c.RandomInputs()
	params := make([]string, 0, len(ri))
	for p := range ri {
		params = append(params, p)
	}
	sort.Strings(params)
	return params
}

// Extend appends a new component to the model. The model must be built in
// topological order: every random input of c must either already be a
// member (resolved as an internal edge) or nil (registered as a free input
// of the model). Re-extending a component already attached to this model is
// a no-op; a name collision with a different component fails with
// ErrDuplicateName, and a component owned by another model fails with
// ErrForeignModel.
func (m *JointModel) Extend(c Component) error {
	if idx, ok := m.index[c.Name()]; ok {
		if m.components[idx] == c {
			return nil
		}
		return fmt.Errorf("%w: %q", ErrDuplicateName, c.Name())
	}

	ri := c.RandomInputs()
	var free []FreeInput
	for _, param := range sortedParams(c) {
		src := ri[param]
		if src == nil {
			free = append(free, FreeInput{Component: c, Param: param})
			continue
		}
		if !m.contains(src) {
			return fmt.Errorf("%w: input %q of %q (add %q first)", ErrNotMember, param, c.Name(), src.Name())
		}
	}

	if err := c.Bind(m); err != nil {
		return err
	}

	m.index[c.Name()] = len(m.components)
	m.components = append(m.components, c)
	m.freeInputs = append(m.freeInputs, free...)
	return nil
}

// Marginalize removes v from the model's output set by attaching q as its
// approximating distribution. A nil q requests v's default variational
// family. The variable must be a current output: marginalizing a non-member
// fails with ErrNotMember and marginalizing twice with
// ErrAlreadyMarginalized.
//
// If the variational model has already been built it is extended in place,
// so a cached instance always reflects the current marginalization set; the
// assembled ELBO is invalidated and rebuilt on next use.
func (m *JointModel) Marginalize(v Component, q Component) error {
	if !m.contains(v) {
		return fmt.Errorf("%w: %q", ErrNotMember, v.Name())
	}
	if _, ok := m.marginalizations[v.Name()]; ok {
		return fmt.Errorf("%w: %q", ErrAlreadyMarginalized, v.Name())
	}

	if q == nil {
		var err error
		if q, err = v.DefaultVariational(); err != nil {
			return err
		}
	}

	if m.vm != nil {
		if err := m.vm.Extend(q); err != nil {
			return err
		}
	}

	m.marginalizations[v.Name()] = q
	m.margOrder = append(m.margOrder, v.Name())
	m.margReverse[q.Name()] = v.Name()
	m.elbo = nil
	m.elboPlan = nil
	return nil
}

// Observe marks v as data: value is wrapped in an Observed component named
// after v and attached as its variational component. Fails under the same
// conditions as Marginalize.
func (m *JointModel) Observe(v Component, value []float64) error {
	obs, err := NewObserved("observed_"+v.Name(), v.Shape(), value)
	if err != nil {
		return err
	}
	return m.Marginalize(v, obs)
}

// Marginalized returns the variational component attached to the named
// variable, if any.
func (m *JointModel) Marginalized(name string) (Component, bool) {
	q, ok := m.marginalizations[name]
	return q, ok
}

// Outputs returns the components that have not been marginalized away.
// Marginalizing a variable does not remove its dependents: for
// p(A,B) = p(A)p(B|A), marginalizing A still leaves B as an output.
func (m *JointModel) Outputs() []Component {
	var out []Component
	for _, c := range m.components {
		if _, ok := m.marginalizations[c.Name()]; !ok {
			out = append(out, c)
		}
	}
	return out
}

// VariationalModel returns the mean-field approximating model: a JointModel
// whose components are the attached variational components in registration
// order. It is built lazily and memoized; later marginalizations extend the
// cached instance in place rather than invalidating it.
func (m *JointModel) VariationalModel() (*JointModel, error) {
	if m.vm != nil {
		return m.vm, nil
	}

	vm := NewJointModel(func(o *Options) {
		o.Name = m.name + "_q"
		o.Logger = m.logger
	})
	vm.g = m.Graph()
	for _, name := range m.margOrder {
		if err := vm.Extend(m.marginalizations[name]); err != nil {
			return nil, err
		}
	}

	m.vm = vm
	return vm, nil
}

// InputShape returns the declared shape of a member component's input
// parameter.
func (m *JointModel) InputShape(component, param string) (graph.Shape, error) {
	idx, ok := m.index[component]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotMember, component)
	}
	return m.components[idx].InputShape(param)
}
