package resolver

import "context"

// Retry calls fn up to attempts times, immediately retrying while transient
// reports the error as transient. The last error is returned once the budget
// is spent; permanent errors and context cancellation stop at once.
func Retry[T any](ctx context.Context, attempts int, transient func(error) bool, fn func(context.Context) (T, error)) (T, error) {
	if attempts < 1 {
		attempts = 1
	}

	var zero T
	var err error
	for i := 0; i < attempts; i++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return zero, ctxErr
		}

		var v T
		v, err = fn(ctx)
		if err == nil {
			return v, nil
		}
		if !transient(err) {
			return zero, err
		}
	}
	return zero, err
}
