package cluster

import "github.com/cockroachdb/errors"

// Error kinds returned by the clustering entry points. Call sites wrap these
// with context; use errors.Is to test for a kind.
var (
	// ErrEmptyInput is returned when a dataset has no points.
	ErrEmptyInput = errors.New("empty input")

	// ErrDimensionMismatch is returned when points (or two compared vectors)
	// have different lengths.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrInvalidParameter is returned when a configuration value is out of
	// range for the dataset it is applied to.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrFit is returned when an iterative engine cannot produce a model,
	// e.g. a mixture component whose covariance is not positive definite.
	ErrFit = errors.New("fit failed")
)

func invalidParamf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidParameter, format, args...)
}

// clusterCountError reports an unusable cluster count. It is both an
// ErrInvalidParameter and an ErrFit so that callers checking either kind
// see it.
func clusterCountError(engine string, k, n int) error {
	err := errors.Wrapf(ErrInvalidParameter, "cluster: %s NClusters must be in [1, %d], got %d", engine, n, k)
	err = errors.Mark(err, ErrFit)
	return errors.WithHint(err, "NClusters cannot exceed the number of points")
}
