package core

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/varmesh/varmesh/graph"
)

// stubComponent is a minimal Component for exercising model bookkeeping:
// its sample is noise around zero and its densities are constants.
type stubComponent struct {
	BaseComponent
	shape  graph.Shape
	inputs map[string]Component
}

func newStub(name string, inputs map[string]Component) *stubComponent {
	return &stubComponent{
		BaseComponent: NewBaseComponent(name),
		shape:         graph.Shape{1},
		inputs:        inputs,
	}
}

func (s *stubComponent) RandomInputs() map[string]Component { return s.inputs }

func (s *stubComponent) FixedInputs() map[string][]float64 { return nil }

func (s *stubComponent) Shape() graph.Shape { return s.shape }

func (s *stubComponent) InputShape(param string) (graph.Shape, error) {
	if _, ok := s.inputs[param]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownInput, param)
	}
	return s.shape, nil
}

func (s *stubComponent) BuildSample(g *graph.Graph, _ map[string]*graph.Node) (*graph.Node, graph.Plan, error) {
	if n, p, ok := s.CachedSample(); ok {
		return n, p, nil
	}
	eps := g.Placeholder(s.Name()+"_eps", s.shape)
	plan := graph.Plan{{Node: eps, Kind: graph.NoiseNormal}}
	s.CacheSample(eps, plan)
	return eps, plan, nil
}

func (s *stubComponent) ExpectedLogProb(g *graph.Graph, _ map[string]Component) (*graph.Node, error) {
	return g.Scalar(0), nil
}

func (s *stubComponent) EntropyLowerBound(g *graph.Graph, _ map[string]*graph.Node) (*graph.Node, error) {
	return g.Scalar(0), nil
}

func (s *stubComponent) DefaultVariational() (Component, error) {
	return newStub("q_"+s.Name(), nil), nil
}

func (s *stubComponent) OptimizedParams(_ *graph.Session, _ graph.Feed) (map[string][]float64, error) {
	return map[string][]float64{}, nil
}

// chain builds a model a -> b -> c extended in topological order.
func chain(t *testing.T) (*JointModel, *stubComponent, *stubComponent, *stubComponent) {
	t.Helper()
	m := NewJointModel()
	a := newStub("a", nil)
	b := newStub("b", map[string]Component{"x": a})
	c := newStub("c", map[string]Component{"x": b})
	for _, comp := range []Component{a, b, c} {
		require.NoError(t, m.Extend(comp))
	}
	return m, a, b, c
}

func TestExtendTracksOutputsAcrossDepth(t *testing.T) {
	m, a, b, c := chain(t)

	assert.Equal(t, []Component{a, b, c}, m.Outputs())
	assert.Equal(t, m, a.Model())

	// Marginalizing a variable keeps its dependents as outputs.
	require.NoError(t, m.Marginalize(a, nil))
	assert.Equal(t, []Component{b, c}, m.Outputs())

	require.NoError(t, m.Marginalize(c, nil))
	assert.Equal(t, []Component{b}, m.Outputs())
}

func TestExtendIdempotent(t *testing.T) {
	m := NewJointModel()
	a := newStub("a", nil)
	require.NoError(t, m.Extend(a))
	require.NoError(t, m.Extend(a))
	assert.Len(t, m.Components(), 1)
}

func TestExtendDuplicateName(t *testing.T) {
	m := NewJointModel()
	require.NoError(t, m.Extend(newStub("a", nil)))
	err := m.Extend(newStub("a", nil))
	require.ErrorIs(t, err, ErrDuplicateName)
}

func TestExtendForeignModel(t *testing.T) {
	m1 := NewJointModel()
	m2 := NewJointModel()
	a := newStub("a", nil)
	require.NoError(t, m1.Extend(a))

	err := m2.Extend(a)
	require.ErrorIs(t, err, ErrForeignModel)
	assert.Equal(t, m1, a.Model())
}

func TestExtendRequiresTopologicalOrder(t *testing.T) {
	m := NewJointModel()
	a := newStub("a", nil)
	b := newStub("b", map[string]Component{"x": a})

	err := m.Extend(b) // upstream a not yet a member
	require.ErrorIs(t, err, ErrNotMember)
}

func TestFreeInputRegistration(t *testing.T) {
	m := NewJointModel()
	a := newStub("a", map[string]Component{"loc": nil})
	require.NoError(t, m.Extend(a))

	free := m.FreeInputs()
	require.Len(t, free, 1)
	assert.Equal(t, "a.loc", free[0].Key())

	_, _, err := m.SampleGraph(nil)
	require.ErrorIs(t, err, ErrUnresolvedInput)

	loc := m.Graph().Scalar(0)
	sampled, plan, err := m.SampleGraph(map[string]*graph.Node{"a.loc": loc})
	require.NoError(t, err)
	assert.Contains(t, sampled, "a")
	assert.Len(t, plan, 1)
}

func TestMarginalizeErrors(t *testing.T) {
	m, a, _, _ := chain(t)

	require.NoError(t, m.Marginalize(a, nil))
	require.ErrorIs(t, m.Marginalize(a, nil), ErrAlreadyMarginalized)

	outsider := newStub("z", nil)
	require.ErrorIs(t, m.Marginalize(outsider, nil), ErrNotMember)

	// Same-name component from another model is still not a member.
	impostor := newStub("b", nil)
	require.ErrorIs(t, m.Marginalize(impostor, nil), ErrNotMember)
}

func TestObserve(t *testing.T) {
	m, a, b, _ := chain(t)

	require.NoError(t, m.Observe(b, []float64{1.5}))
	q, ok := m.Marginalized("b")
	require.True(t, ok)
	obs, ok := q.(*Observed)
	require.True(t, ok)
	assert.Equal(t, "observed_b", obs.Name())
	assert.Equal(t, []float64{1.5}, obs.Value())

	// Shape mismatch is rejected before any state changes.
	err := m.Observe(a, []float64{1, 2})
	require.ErrorIs(t, err, ErrShapeMismatch)
	_, ok = m.Marginalized("a")
	assert.False(t, ok)
}

func TestVariationalModelCaching(t *testing.T) {
	m, a, b, c := chain(t)
	require.NoError(t, m.Marginalize(a, nil))

	vm1, err := m.VariationalModel()
	require.NoError(t, err)
	vm2, err := m.VariationalModel()
	require.NoError(t, err)
	assert.Same(t, vm1, vm2)
	assert.Len(t, vm1.Components(), 1)

	// A later marginalization must be reflected by the cached instance.
	require.NoError(t, m.Marginalize(b, nil))
	vm3, err := m.VariationalModel()
	require.NoError(t, err)
	assert.Same(t, vm1, vm3)
	assert.Len(t, vm3.Components(), 2)

	require.NoError(t, m.Observe(c, []float64{0}))
	assert.Len(t, vm1.Components(), 3)
}

func TestVariationalModelOrderFollowsRegistration(t *testing.T) {
	m, a, b, c := chain(t)
	require.NoError(t, m.Marginalize(c, nil))
	require.NoError(t, m.Marginalize(a, nil))
	require.NoError(t, m.Marginalize(b, nil))

	vm, err := m.VariationalModel()
	require.NoError(t, err)
	comps := vm.Components()
	require.Len(t, comps, 3)
	assert.Equal(t, "q_c", comps[0].Name())
	assert.Equal(t, "q_a", comps[1].Name())
	assert.Equal(t, "q_b", comps[2].Name())
}

func TestELBOMissingVariational(t *testing.T) {
	m, a, _, _ := chain(t)

	// Nothing marginalized: sampling and outputs work, ELBO does not.
	_, _, err := m.SampleGraph(nil)
	require.NoError(t, err)
	assert.Len(t, m.Outputs(), 3)

	_, _, err = m.ELBOGraph()
	require.ErrorIs(t, err, ErrMissingVariational)

	// Marginalizing only the root still leaves b and c uncovered.
	require.NoError(t, m.Marginalize(a, nil))
	_, _, err = m.ELBOGraph()
	require.ErrorIs(t, err, ErrMissingVariational)
}

func TestELBOAssemblesWhenFullyClassified(t *testing.T) {
	m, a, b, c := chain(t)
	require.NoError(t, m.Marginalize(a, nil))
	require.NoError(t, m.Marginalize(b, nil))
	require.NoError(t, m.Observe(c, []float64{0.5}))

	elbo, plan, err := m.ELBOGraph()
	require.NoError(t, err)
	require.NotNil(t, elbo)
	assert.Len(t, plan, 2) // one draw per stub variational factor

	// The assembled bound is cached until the marginalization set changes.
	elbo2, _, err := m.ELBOGraph()
	require.NoError(t, err)
	assert.Same(t, elbo, elbo2)
}

func TestInputShapeLookup(t *testing.T) {
	m, _, _, _ := chain(t)

	shape, err := m.InputShape("b", "x")
	require.NoError(t, err)
	assert.Equal(t, graph.Shape{1}, shape)

	_, err = m.InputShape("nope", "x")
	require.ErrorIs(t, err, ErrNotMember)

	_, err = m.InputShape("b", "nope")
	require.ErrorIs(t, err, ErrUnknownInput)
}
