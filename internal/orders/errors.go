package orders

import (
	"fmt"

	pkgerrors "github.com/yulishop/storefront/pkg/errors"
)

// SubmissionError reports an order the backend did not accept, either because
// it answered with a non-2xx status or because it could not be reached.
// Status is 0 for transport failures.
type SubmissionError struct {
	Status  int
	Message string
	typed   *pkgerrors.Error
}

func newSubmissionError(status int, message string, cause error) *SubmissionError {
	details := map[string]any{}
	if status > 0 {
		details["status"] = status
	}
	return &SubmissionError{
		Status:  status,
		Message: message,
		typed:   pkgerrors.Wrap(pkgerrors.CodeDependency, cause, message).WithDetails(details),
	}
}

func (e *SubmissionError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("order submission failed (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("order submission failed: %s", e.Message)
}

// Unwrap exposes the retryable CodeDependency error so callers can use
// pkgerrors.As on a SubmissionError.
func (e *SubmissionError) Unwrap() error {
	if e.typed == nil {
		return nil
	}
	return e.typed
}

// clientFault reports a 4xx answer, which says nothing about backend health.
func (e *SubmissionError) clientFault() bool {
	return e.Status >= 400 && e.Status < 500
}
