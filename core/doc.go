// Package core provides the joint-model composition engine of varmesh. It
// defines the core abstractions for:
//
//   - Components (named random variables with conditional distributions)
//   - JointModel (a topologically ordered DAG of components representing
//     their joint distribution)
//   - Marginalization and observation (classifying each output variable as
//     latent, to be integrated out by a variational component, or as data)
//   - Variational models (the attached approximating components, themselves
//     composed into a mean-field JointModel)
//   - Stochastic ELBO assembly and gradient-ascent training
//
// A JointModel is built incrementally: Extend appends components in
// dependency order, then Observe and Marginalize classify each output.
// Sampling and ELBO construction are symbolic — they build a computation
// graph once, together with a randomness plan whose fresh draws drive
// repeated stochastic-gradient steps without rebuilding the graph.
//
// The package intentionally keeps concrete distribution families out of
// scope (see the dist package), exposing the Component interface so custom
// families can participate in composition and inference.
package core
