package llm

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds surfaced by the model client. Callers match with errors.Is.
var (
	ErrRateLimited        = errors.New("model rate limited")
	ErrInvalidCredentials = errors.New("invalid model credentials")
	ErrQuotaExceeded      = errors.New("model quota exceeded")
	ErrModelUnavailable   = errors.New("model unavailable")
	ErrTransport          = errors.New("model transport failure")
)

// classification maps a provider-error substring to an error kind. The table
// is evaluated in order; first match wins. Substring matching is what the
// provider leaves us with, so at least keep the mapping in one place.
type classification struct {
	substr string
	kind   error
}

var classifications = []classification{
	{"rate_limit", ErrRateLimited},
	{"invalid_api_key", ErrInvalidCredentials},
	{"quota", ErrQuotaExceeded},
	{"decommissioned", ErrModelUnavailable},
}

// Classify wraps a provider error with the matching error kind, or with
// ErrTransport when no pattern matches. A nil error stays nil.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	for _, c := range classifications {
		if strings.Contains(msg, c.substr) {
			return fmt.Errorf("%w: %v", c.kind, err)
		}
	}
	return fmt.Errorf("%w: %v", ErrTransport, err)
}
