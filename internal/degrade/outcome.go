package degrade

// Status tags an Outcome.
type Status int

const (
	StatusSuccess Status = iota
	StatusDegraded
	StatusFailure
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusDegraded:
		return "degraded"
	default:
		return "failure"
	}
}

// Outcome is the result of Run. Value is set for Success and Degraded,
// Reason only for Degraded, Err only for Failure. Skipped is true when the
// primary was never attempted because its capability is not configured.
type Outcome[T any] struct {
	Status  Status
	Value   T
	Reason  string
	Err     error
	Skipped bool
}

func Succeeded[T any](v T) Outcome[T] {
	return Outcome[T]{Status: StatusSuccess, Value: v}
}

func Degraded[T any](v T, reason string) Outcome[T] {
	return Outcome[T]{Status: StatusDegraded, Value: v, Reason: reason}
}

func Failed[T any](err error) Outcome[T] {
	return Outcome[T]{Status: StatusFailure, Err: err}
}

func (o Outcome[T]) IsDegraded() bool { return o.Status == StatusDegraded }

func (o Outcome[T]) IsFailure() bool { return o.Status == StatusFailure }

// Unwrap collapses the outcome to the usual (value, error) pair.
func (o Outcome[T]) Unwrap() (T, error) {
	return o.Value, o.Err
}
