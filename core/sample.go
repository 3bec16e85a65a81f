package core

import (
	"fmt"
	"sort"

	"golang.org/x/exp/rand"

	"github.com/varmesh/varmesh/graph"
)

// SampleGraph threads symbolic sampled values through the DAG: every
// component's sample is built (once) from its resolved inputs in
// topological order. freeInputs supplies nodes for the model's unresolved
// inputs, keyed by FreeInput.Key; a missing entry fails with
// ErrUnresolvedInput.
//
// It returns the name-to-node sample assignment together with the
// randomness plan whose draws realize concrete joint samples. The graph is
// built once; redrawing the plan produces fresh samples without rebuilding.
func (m *JointModel) SampleGraph(freeInputs map[string]*graph.Node) (map[string]*graph.Node, graph.Plan, error) {
	g := m.Graph()

	sampled := make(map[string]*graph.Node, len(m.components))
	var plan graph.Plan

	for _, c := range m.components {
		ri := c.RandomInputs()
		inputs := make(map[string]*graph.Node, len(ri))
		for _, param := range sortedParams(c) {
			src := ri[param]
			if src == nil {
				v, ok := freeInputs[FreeInput{Component: c, Param: param}.Key()]
				if !ok {
					return nil, nil, fmt.Errorf("%w: %q of %q", ErrUnresolvedInput, param, c.Name())
				}
				inputs[param] = v
				continue
			}
			n := src.SampledNode()
			if n == nil {
				return nil, nil, fmt.Errorf("%w: input %q of %q", ErrNotSampled, param, c.Name())
			}
			inputs[param] = n
		}

		node, p, err := c.BuildSample(g, inputs)
		if err != nil {
			return nil, nil, fmt.Errorf("core: sampling %q: %w", c.Name(), err)
		}
		sampled[c.Name()] = node
		plan = append(plan, p...)
	}

	return sampled, plan, nil
}

// Sample draws one concrete joint sample: it builds the sample graph with
// no free inputs, seeds the pseudorandom source, draws one base-randomness
// assignment and materializes numeric values for every component. The
// result is deterministic for a fixed seed. Sample is a convenience and
// debugging entry point; training never calls it.
func (m *JointModel) Sample(seed uint64) (map[string][]float64, error) {
	sampled, plan, err := m.SampleGraph(nil)
	if err != nil {
		return nil, err
	}

	sess := graph.NewSession(m.Graph())
	defer sess.Close()

	feed := plan.Draw(rand.NewSource(seed))

	names := make([]string, 0, len(sampled))
	for name := range sampled {
		names = append(names, name)
	}
	sort.Strings(names)

	fetches := make([]*graph.Node, len(names))
	for i, name := range names {
		fetches[i] = sampled[name]
	}

	vals, err := sess.Run(feed, fetches...)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]float64, len(names))
	for i, name := range names {
		out[name] = vals[i]
	}
	return out, nil
}
