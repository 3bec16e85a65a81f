// Package dist provides concrete conditional-distribution families for
// varmesh joint models:
//
//   - Gaussian: a (multi-element) normal variable with fixed or random mean
//   - MeanField: the default variational family, a diagonal Gaussian with
//     trainable mean and log-standard-deviation
//   - NoisyMatrixProduct: C = A·Bᵀ plus Gaussian noise (low-rank
//     factorizations)
//   - NoisyCumulativeSum: running sums plus Gaussian noise (random walks)
//
// Every family embeds core.BaseComponent and satisfies core.Component, so
// models mix families freely. Sampling uses the reparameterization trick
// throughout: samples are deterministic transforms of standard-normal base
// randomness, keeping the ELBO differentiable in the variational
// parameters.
package dist
