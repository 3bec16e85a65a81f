// Package testutil provides shared model fixtures for tests: small joint
// models mirroring the canonical scenarios (Gaussian mean estimation,
// low-rank factorization) so inference tests across packages build them the
// same way.
package testutil
