package core

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/varmesh/varmesh/graph"
	"github.com/varmesh/varmesh/logging"
)

// Posterior maps variable names to their fitted variational parameters
// (e.g. "mean" and "std" for a mean-field Gaussian).
type Posterior map[string]map[string][]float64

// TrainOptions configures a training run.
type TrainOptions struct {
	// Steps is the number of gradient-ascent iterations.
	Steps int
	// LearningRate is passed to the Adam optimizer.
	LearningRate float64
	// Seed initializes the base-randomness source.
	Seed uint64
	// Debug enables a numeric (NaN/Inf) check before every optimizer step.
	Debug bool
	// LogEvery emits an ELBO diagnostic every n steps; 0 disables.
	LogEvery int
	// Logger overrides the model's logger for this run.
	Logger logging.Logger
}

// TrainResult carries the outcome of a training run.
type TrainResult struct {
	// Posterior holds the fitted variational parameters per variable.
	Posterior Posterior
	// ELBO is the per-step trace of the bound, one entry per iteration.
	ELBO []float64
}

// Posterior queries every variational component for its fitted parameters
// and returns them keyed by the original variable name (translated through
// the reverse marginalization lookup). Components exposing no parameters
// are omitted.
func (m *JointModel) Posterior(sess *graph.Session, feed graph.Feed) (Posterior, error) {
	vm, err := m.VariationalModel()
	if err != nil {
		return nil, err
	}

	post := make(Posterior)
	for _, q := range vm.components {
		params, err := q.OptimizedParams(sess, feed)
		if err != nil {
			return nil, fmt.Errorf("core: fitted parameters of %q: %w", q.Name(), err)
		}
		if len(params) == 0 {
			continue
		}
		name := q.Name()
		if orig, ok := m.margReverse[name]; ok {
			name = orig
		}
		post[name] = params
	}
	return post, nil
}

// Train maximizes the ELBO by stochastic gradient ascent: the bound is
// assembled once, then each iteration draws fresh base randomness from the
// plan, takes one Adam step on the negative bound and records the current
// estimate. When the model has no trainable parameters (nothing was
// marginalized with a parameterized family) training is skipped with zero
// iterations rather than failing.
//
// Construction and lookup errors (e.g. a missing variational component)
// abort the run. Numeric problems are detected only when Debug is set.
func (m *JointModel) Train(optFns ...func(o *TrainOptions)) (*TrainResult, error) {
	opts := TrainOptions{
		Steps:        200,
		LearningRate: 0.1,
		LogEvery:     50,
		Logger:       m.logger,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	elbo, plan, err := m.ELBOGraph()
	if err != nil {
		return nil, err
	}
	loss := graph.Neg(elbo)

	sess := graph.NewSession(m.Graph())
	defer sess.Close()

	vars := m.Graph().Variables()
	steps := opts.Steps
	if len(vars) == 0 {
		opts.Logger.Warn("no trainable parameters, skipping training", "model", m.name)
		steps = 0
	}
	opt := graph.NewAdam(vars, func(o *graph.AdamOptions) {
		o.LearningRate = opts.LearningRate
	})

	src := rand.NewSource(opts.Seed)
	trace := make([]float64, 0, steps)
	var feed graph.Feed

	for i := 0; i < steps; i++ {
		feed = plan.Draw(src)

		if opts.Debug {
			if err := sess.CheckNumerics(feed, loss); err != nil {
				return nil, fmt.Errorf("core: step %d: %w", i, err)
			}
		}

		grads, err := sess.Gradients(loss, feed)
		if err != nil {
			return nil, err
		}
		opt.Step(grads)

		vals, err := sess.Run(feed, elbo)
		if err != nil {
			return nil, err
		}
		cur := vals[0][0]
		trace = append(trace, cur)

		if opts.LogEvery > 0 && i%opts.LogEvery == 0 {
			opts.Logger.Info("training step", "model", m.name, "step", i, "elbo", cur)
		}
	}

	if feed == nil {
		feed = plan.Draw(src)
	}
	post, err := m.Posterior(sess, feed)
	if err != nil {
		return nil, err
	}
	return &TrainResult{Posterior: post, ELBO: trace}, nil
}
