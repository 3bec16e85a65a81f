// Package graph implements the execution backend for varmesh: a small
// symbolic computation graph with forward evaluation, reverse-mode
// gradients, and a stochastic-gradient optimizer.
//
// The package splits computation into two phases. Graph construction builds
// symbolic nodes once (constants, trainable variables, placeholders and
// arithmetic ops). Evaluation then materializes numeric values against a
// Feed that supplies placeholder values; drawing a fresh Feed from a noise
// Plan yields a new stochastic sample without rebuilding the graph. This is
// the mechanism that lets a training loop redraw base randomness on every
// step while reusing one graph.
//
//   - Graph / Node: the symbolic program (Const, Variable, Placeholder, ops)
//   - Session: scoped forward evaluation and gradient computation
//   - Plan: an explicit randomness plan (placeholder, distribution) pairs
//   - Adam: stochastic gradient optimizer over graph variables
//
// Shape errors during graph construction are programming errors and panic,
// mirroring gonum/mat. Evaluation-time problems (missing placeholder feeds,
// non-finite values under numeric checking) are returned as errors.
package graph
