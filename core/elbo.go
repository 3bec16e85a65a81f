package core

import (
	"fmt"

	"github.com/varmesh/varmesh/graph"
)

// ELBOGraph assembles the stochastic evidence lower bound
//
//	ELBO = E_q[log p(data, latents)] + H(q)
//
// as a symbolic scalar: the variational model is sampled, its entropy lower
// bound added, and every component contributes its expected log-probability
// under the variational components attached to itself and to its random
// inputs. The returned plan carries the variational sample's base
// randomness; redrawing it yields fresh stochastic-gradient estimates of
// the same bound.
//
// Every component must have a variational component attached (observed data
// counts, via its Observed wrapper); a missing one fails with
// ErrMissingVariational naming the component and parameter. The assembled
// bound is cached until the marginalization set changes.
func (m *JointModel) ELBOGraph() (*graph.Node, graph.Plan, error) {
	if m.elbo != nil {
		return m.elbo, m.elboPlan, nil
	}

	g := m.Graph()
	vm, err := m.VariationalModel()
	if err != nil {
		return nil, nil, err
	}

	_, plan, err := vm.SampleGraph(nil)
	if err != nil {
		return nil, nil, err
	}

	entropy, err := vm.EntropyLowerBound()
	if err != nil {
		return nil, nil, err
	}

	terms := []*graph.Node{entropy}
	for _, c := range m.components {
		ri := c.RandomInputs()
		qs := make(map[string]Component, len(ri)+1)
		for _, param := range sortedParams(c) {
			src := ri[param]
			if src == nil {
				continue // free input, nothing to integrate
			}
			q, ok := m.marginalizations[src.Name()]
			if !ok {
				return nil, nil, fmt.Errorf("%w: input %q of %q (upstream %q)", ErrMissingVariational, param, c.Name(), src.Name())
			}
			qs[param] = q
		}

		q, ok := m.marginalizations[c.Name()]
		if !ok {
			return nil, nil, fmt.Errorf("%w: %q", ErrMissingVariational, c.Name())
		}
		qs["result"] = q

		term, err := c.ExpectedLogProb(g, qs)
		if err != nil {
			return nil, nil, fmt.Errorf("core: expected log-probability of %q: %w", c.Name(), err)
		}
		terms = append(terms, term)
	}

	m.elbo = graph.AddN(terms...)
	m.elboPlan = plan
	return m.elbo, m.elboPlan, nil
}

// EntropyLowerBound sums each component's parameterized entropy lower bound
// over sampled input values. Under the mean-field independence assumption
// the joint entropy is additive across components. The model must have been
// sampled first (SampleGraph).
func (m *JointModel) EntropyLowerBound() (*graph.Node, error) {
	g := m.Graph()
	terms := make([]*graph.Node, 0, len(m.components))

	for _, c := range m.components {
		ri := c.RandomInputs()
		inputs := make(map[string]*graph.Node, len(ri))
		for _, param := range sortedParams(c) {
			if src := ri[param]; src != nil {
				if n := src.SampledNode(); n != nil {
					inputs[param] = n
				}
			}
		}
		h, err := c.EntropyLowerBound(g, inputs)
		if err != nil {
			return nil, fmt.Errorf("core: entropy bound of %q: %w", c.Name(), err)
		}
		terms = append(terms, h)
	}

	if len(terms) == 0 {
		return g.Scalar(0), nil
	}
	return graph.AddN(terms...), nil
}
