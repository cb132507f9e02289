package track

import "fmt"

// TimeOrderError is returned when an observation's timestamp does not
// strictly follow its predecessor. Recoverable: the caller should drop the
// observation and keep the prior state.
type TimeOrderError struct {
	Prev int64
	Got  int64
}

func (e *TimeOrderError) Error() string {
	return fmt.Sprintf("track: observation timestamp %d does not strictly follow previous %d", e.Got, e.Prev)
}

// NotGeoreferencedError is returned when a world-to-local coordinate
// conversion fails (e.g. an antipodal or degenerate projection origin).
type NotGeoreferencedError struct {
	Reason string
}

func (e *NotGeoreferencedError) Error() string {
	return "track: not georeferenced: " + e.Reason
}

// NumericFailureError covers non-PSD covariances, singular innovation
// covariance in the Kalman gain, and Cholesky factorization failure. Fatal
// for the affected vehicle; the caller should discard the state rather than
// attempt regularization here.
type NumericFailureError struct {
	Op     string
	Reason string
}

func (e *NumericFailureError) Error() string {
	return fmt.Sprintf("track: numeric failure in %s: %s", e.Op, e.Reason)
}

// GraphInconsistencyError indicates a sampled transfer edge is not adjacent
// to the current edge, or the graph view otherwise violates its contract.
type GraphInconsistencyError struct {
	Reason string
}

func (e *GraphInconsistencyError) Error() string {
	return "track: graph inconsistency: " + e.Reason
}

// NotImplementedError marks operations the original model deliberately left
// unsupported, such as sampling directly from a VehicleState's conditional
// density.
type NotImplementedError struct {
	Op string
}

func (e *NotImplementedError) Error() string {
	return "track: not implemented: " + e.Op
}
