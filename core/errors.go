package core

import "errors"

// Sentinel errors for model construction and ELBO assembly. Construction
// and lookup failures are fatal user errors: they are surfaced immediately
// with identifying context and never retried.
var (
	// ErrForeignModel indicates a component already bound to a different
	// JointModel was passed to Extend.
	ErrForeignModel = errors.New("core: component already bound to a different model")

	// ErrDuplicateName indicates a component whose name collides with an
	// existing member of the model.
	ErrDuplicateName = errors.New("core: duplicate component name")

	// ErrNotMember indicates an operation referenced a component that is not
	// part of this model.
	ErrNotMember = errors.New("core: component is not a member of this model")

	// ErrAlreadyMarginalized indicates a second marginalization of the same
	// variable.
	ErrAlreadyMarginalized = errors.New("core: component already marginalized")

	// ErrMissingVariational indicates ELBO assembly required a variational
	// component that was never attached.
	ErrMissingVariational = errors.New("core: no variational component attached")

	// ErrUnresolvedInput indicates a free input of the model was given no
	// value when building a sample.
	ErrUnresolvedInput = errors.New("core: unresolved free input")

	// ErrNoDefaultVariational indicates a component has no default
	// variational family.
	ErrNoDefaultVariational = errors.New("core: component has no default variational family")

	// ErrNotSampled indicates a component's symbolic sample was requested
	// before it was built.
	ErrNotSampled = errors.New("core: component has not been sampled")

	// ErrUnknownInput indicates a parameter name that is not an input of the
	// component.
	ErrUnknownInput = errors.New("core: unknown input parameter")

	// ErrShapeMismatch indicates a supplied value does not match a
	// component's declared shape.
	ErrShapeMismatch = errors.New("core: value does not match component shape")
)
