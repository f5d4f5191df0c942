// errors.go — error classification for driver primitives. Adapted from the
// teacher's internal/bridge/conn.go IsConnectionError: prefer typed error
// checks, fall back to string matching for wrapped errors that lose type
// information.
package browser

import (
	"context"
	"errors"
	"strings"

	"github.com/brennhill/calibrator/internal/coreerr"
)

// ClassifyTimeout wraps a context-deadline/cancellation style error (or a
// driver-specific timeout string) as a *coreerr.CoreError with KindTimeout.
func ClassifyTimeout(err error, op string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return coreerr.Wrap(coreerr.KindTimeout, op+" timed out", err)
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "timed out") {
		return coreerr.Wrap(coreerr.KindTimeout, op+" timed out", err)
	}
	return err
}

// ClassifyNotVisible wraps a driver error indicating the element never
// became visible within its wait window.
func ClassifyNotVisible(err error, selector string) error {
	if err == nil {
		return nil
	}
	return coreerr.Wrap(coreerr.KindElementNotVisible, "element not visible: "+selector, err)
}

// ClassifyNavigation wraps a driver error from Goto. NavigationFailed is not
// in the §4.2 closed non-retriable set, so it retries like any other
// transient failure unless the caller marks a specific instance fatal.
func ClassifyNavigation(err error, url string) error {
	if err == nil {
		return nil
	}
	return coreerr.Wrap(coreerr.KindNavigationFailed, "navigation failed: "+url, err)
}
