package kuaishou

import "time"

// Status classifies the outcome of one platform call.
type Status int

const (
	// StatusOK means the call produced usable data.
	StatusOK Status = iota
	// StatusEmpty means the platform answered but returned no usable data
	// (GraphQL errors without data, missing nested payload, unauthenticated
	// read of an authenticated resource).
	StatusEmpty
	// StatusBlocked means the platform soft-blocked the request (HTTP 403);
	// the same call may succeed after RetryAfter.
	StatusBlocked
	// StatusFailed means a transport or decode failure; Err carries the cause.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusEmpty:
		return "empty"
	case StatusBlocked:
		return "blocked"
	default:
		return "failed"
	}
}

// Result is the outcome union every API call and pagination step produces.
// "empty" and "blocked" are distinct states, never conflated into a nil.
type Result[T any] struct {
	Status     Status
	Value      T
	RetryAfter time.Duration
	Err        error
}

func ok[T any](v T) Result[T] {
	return Result[T]{Status: StatusOK, Value: v}
}

func empty[T any]() Result[T] {
	return Result[T]{Status: StatusEmpty}
}

func blocked[T any](retryAfter time.Duration) Result[T] {
	return Result[T]{Status: StatusBlocked, RetryAfter: retryAfter}
}

func failed[T any](err error) Result[T] {
	return Result[T]{Status: StatusFailed, Err: err}
}
