package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrSessionExpired  = errors.New("session expired")
	ErrEmptyPrompt     = errors.New("prompt is required")
	ErrUnknownStyle    = errors.New("unknown style")
	ErrInvalidPhone    = errors.New("invalid phone number")
	ErrNoImage         = errors.New("no image selected")
	ErrProviderFailure = errors.New("provider failure")
)

// PageGuardError signals that an operation was invoked out of order. The
// flow redirects the session to the named page instead of executing.
type PageGuardError struct {
	Redirect Page
}

func (e *PageGuardError) Error() string {
	return "page guard: redirect to " + string(e.Redirect)
}

// GuardRedirect extracts the redirect target from a guard error, if any.
func GuardRedirect(err error) (Page, bool) {
	var guard *PageGuardError
	if errors.As(err, &guard) {
		return guard.Redirect, true
	}
	return "", false
}
