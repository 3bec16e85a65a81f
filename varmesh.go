// Package varmesh provides a high-level façade over the core joint-model
// engine for composing modular probabilistic models and fitting them by
// stochastic variational inference. Most applications interact with this
// package by:
//  1. Creating a model via New() (optionally supplying a name and logger)
//  2. Extending it with distribution components (see the dist package) in
//     dependency order
//  3. Classifying each output via Observe (data) or Marginalize (latent)
//  4. Calling Train to maximize the evidence lower bound and read back the
//     fitted posterior
//
// The façade delegates composition and inference to core.JointModel while
// keeping setup ergonomics concise. Defaults are safe for experimentation;
// production use typically supplies a structured logger.
package varmesh

import (
	"github.com/varmesh/varmesh/core"
	"github.com/varmesh/varmesh/logging"
)

// Options configures a new model.
type Options struct {
	// Name identifies the model in diagnostics; generated if empty.
	Name string
	// Logger receives training diagnostics (defaults to NoOp logger if nil).
	Logger logging.Logger
}

// New creates an empty joint model with optional overrides.
func New(optFns ...func(o *Options)) *core.JointModel {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	return core.NewJointModel(func(o *core.Options) {
		o.Name = opts.Name
		o.Logger = opts.Logger
	})
}
