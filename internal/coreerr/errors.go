// Package coreerr defines the closed error-kind taxonomy the core uses to
// classify failures as retriable, optionally skippable, or fatal (spec §7).
package coreerr

import "fmt"

// Kind identifies the class of a core error. The zero value is KindUnknown,
// which is treated as retriable (everything not explicitly listed retries).
type Kind string

const (
	KindUnknown Kind = ""

	// Retriable transient kinds.
	KindTimeout           Kind = "Timeout"
	KindElementNotFound   Kind = "ElementNotFound"
	KindStaleElement      Kind = "StaleElement"
	KindFindInPageNoMatch Kind = "FindInPageNoMatch"
	KindLocatorNotFound   Kind = "LocatorNotFound"
	KindNetworkBlip       Kind = "NetworkBlip"
	KindElementNotVisible Kind = "ElementNotVisible"
	KindNavigationFailed  Kind = "NavigationFailed"

	// Fatal kinds — bypass retry, abort the enclosing operation.
	KindBrowserCrash        Kind = "BrowserCrash"
	KindAutomationFatal     Kind = "AutomationFatal"
	KindArtifactWrite       Kind = "ArtifactWrite"
	KindOSError             Kind = "OSError"
	KindProfileNotFound     Kind = "ProfileNotFound"
	KindProfilePermission   Kind = "ProfilePermission"
	KindProfileEncoding     Kind = "ProfileEncoding"
	KindProfileValidation   Kind = "ProfileValidation"
	KindResolution          Kind = "Resolution"

	// Supervisor-produced kinds.
	KindRetryExhausted Kind = "RetryExhausted"
	KindRetrySkipped   Kind = "RetrySkipped"
)

// nonRetriable is the closed set of kinds that bypass the retry supervisor,
// per spec §4.2. Authoritative over any other signal when classifying an
// externally thrown error.
var nonRetriable = map[Kind]bool{
	KindBrowserCrash:      true,
	KindAutomationFatal:   true,
	KindArtifactWrite:     true,
	KindOSError:           true,
	KindProfileNotFound:   true,
	KindProfilePermission: true,
	KindProfileEncoding:   true,
	KindProfileValidation: true,
	KindResolution:        true,
}

// CoreError is the error type carried through the pipeline. It attaches a
// Kind, an optional explicit retriable override, and a diagnostic hint so a
// caller can act without a second round trip.
type CoreError struct {
	Kind      Kind
	Message   string
	Hint      string
	Retriable *bool // explicit override; nil defers to Kind-based classification
	Cause     error
}

func (e *CoreError) Error() string {
	if e.Hint != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Hint)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *CoreError) Unwrap() error { return e.Cause }

// New constructs a CoreError for the given kind.
func New(kind Kind, message string) *CoreError {
	return &CoreError{Kind: kind, Message: message}
}

// Wrap constructs a CoreError wrapping cause for the given kind.
func Wrap(kind Kind, message string, cause error) *CoreError {
	return &CoreError{Kind: kind, Message: message, Cause: cause}
}

// WithHint attaches a diagnostic hint and returns the receiver for chaining.
func (e *CoreError) WithHint(hint string) *CoreError {
	e.Hint = hint
	return e
}

// Retriable reports whether err is eligible for retry. A kind in the closed
// non-retriable set is never retriable; otherwise an explicit Retriable
// override on a *CoreError decides, and anything else (including an error
// that is not a *CoreError at all) is retriable.
func Retriable(err error) bool {
	if err == nil {
		return false
	}
	ce, ok := err.(*CoreError)
	if !ok {
		return true
	}
	if nonRetriable[ce.Kind] {
		return false
	}
	if ce.Retriable != nil {
		return *ce.Retriable
	}
	return true
}

// KindOf extracts the Kind of err, or KindUnknown if err is not a *CoreError.
func KindOf(err error) Kind {
	ce, ok := err.(*CoreError)
	if !ok {
		return KindUnknown
	}
	return ce.Kind
}
