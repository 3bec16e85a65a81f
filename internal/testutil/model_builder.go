package testutil

import (
	"testing"

	"github.com/varmesh/varmesh/core"
	"github.com/varmesh/varmesh/dist"
	"github.com/varmesh/varmesh/graph"
)

// GaussianMeanModel builds mu ~ N(0, 10) over one element and
// X ~ N(mu, 1) over n elements, the canonical mean-estimation scenario.
func GaussianMeanModel(t *testing.T, n int) (jm *core.JointModel, mu, x *dist.Gaussian) {
	t.Helper()

	jm = core.NewJointModel(func(o *core.Options) { o.Name = "gaussian_mean" })
	mu = dist.NewGaussian("mu", graph.Shape{1}, func(o *dist.GaussianOptions) {
		o.Std = 10
	})
	x = dist.NewGaussian("X", graph.Shape{n}, func(o *dist.GaussianOptions) {
		o.MeanFrom = mu
	})

	if err := jm.Extend(mu); err != nil {
		t.Fatalf("extend mu: %v", err)
	}
	if err := jm.Extend(x); err != nil {
		t.Fatalf("extend X: %v", err)
	}
	return jm, mu, x
}

// LowRankModel builds two independent (rows, rank) Gaussian factors A and B
// combined into the noisy product C = A·Bᵀ + 0.1·ε.
func LowRankModel(t *testing.T, rows, rank int) (jm *core.JointModel, a, b *dist.Gaussian, c *dist.NoisyMatrixProduct) {
	t.Helper()

	jm = core.NewJointModel(func(o *core.Options) { o.Name = "low_rank" })
	a = dist.NewGaussian("A", graph.Shape{rows, rank})
	b = dist.NewGaussian("B", graph.Shape{rows, rank})

	c, err := dist.NewNoisyMatrixProduct("C", a, b, 0.1)
	if err != nil {
		t.Fatalf("product: %v", err)
	}

	for _, comp := range []core.Component{a, b, c} {
		if err := jm.Extend(comp); err != nil {
			t.Fatalf("extend %s: %v", comp.Name(), err)
		}
	}
	return jm, a, b, c
}
