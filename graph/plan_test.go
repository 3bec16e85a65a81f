package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
)

func TestPlanDrawDeterministic(t *testing.T) {
	g := New()
	p1 := g.Placeholder("eps1", Shape{5})
	p2 := g.Placeholder("eps2", Shape{2, 3})
	plan := Plan{
		{Node: p1, Kind: NoiseNormal},
		{Node: p2, Kind: NoiseUniform},
	}

	a := plan.Draw(rand.NewSource(42))
	b := plan.Draw(rand.NewSource(42))

	require.Len(t, a, 2)
	assert.Equal(t, a[p1], b[p1])
	assert.Equal(t, a[p2], b[p2])
	assert.Len(t, a[p1], 5)
	assert.Len(t, a[p2], 6)

	c := plan.Draw(rand.NewSource(43))
	assert.NotEqual(t, a[p1], c[p1])
}

func TestPlanDrawDistributions(t *testing.T) {
	g := New()
	p := g.Placeholder("eps", Shape{20000})
	u := g.Placeholder("uni", Shape{20000})
	plan := Plan{
		{Node: p, Kind: NoiseNormal},
		{Node: u, Kind: NoiseUniform},
	}

	feed := plan.Draw(rand.NewSource(1))

	assert.InDelta(t, 0, stat.Mean(feed[p], nil), 0.05)
	assert.InDelta(t, 1, stat.StdDev(feed[p], nil), 0.05)

	assert.InDelta(t, 0.5, stat.Mean(feed[u], nil), 0.02)
	for _, v := range feed[u] {
		require.GreaterOrEqual(t, v, 0.0)
		require.Less(t, v, 1.0)
	}
}
