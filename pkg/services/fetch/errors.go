package fetch

import (
	"errors"
	"fmt"
	"time"

	"github.com/de-tools/activity-atlas/pkg/models/domain"
)

// ErrorClass names the fatal outcome of a range fetch.
type ErrorClass string

const (
	ClassAuthenticationFailure ErrorClass = "authentication_failure"
	ClassRateLimited           ErrorClass = "rate_limited"
	ClassTransientFetchError   ErrorClass = "transient_fetch_error"
)

var (
	ErrInvalidRange = errors.New("invalid date range")
	ErrRangeTooLong = errors.New("date range too long")
)

// FetchError is returned when a range fetch yields no usable series.
type FetchError struct {
	Class  ErrorClass
	Vendor domain.Vendor
	// Date is the date on which the fetch stopped.
	Date       time.Time
	RetryAfter time.Duration
	Err        error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("%s: %s on %s", e.Vendor, e.Class, e.Date.Format(domain.DateLayout))
	if e.RetryAfter > 0 {
		msg += fmt.Sprintf(", retry after %s", e.RetryAfter)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ClassOf returns the class of a FetchError found in err's chain.
func ClassOf(err error) (ErrorClass, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Class, true
	}
	return "", false
}
