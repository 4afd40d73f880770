package generation

import (
	"errors"
	"fmt"

	"github.com/phrazzld/thinkforge-api/internal/domain"
)

// Errors returned by generators and completers. All of them wrap
// domain.ErrGeneration.
var (
	// ErrGenerationFailed is the general failure.
	ErrGenerationFailed = fmt.Errorf("%w: generator error", domain.ErrGeneration)

	// ErrInvalidResponse is returned when the model output cannot be parsed,
	// does not match the expected schema, or is empty.
	ErrInvalidResponse = fmt.Errorf("%w: invalid response from language model", domain.ErrGeneration)

	// ErrContentBlocked is returned when the provider refuses the prompt or
	// the output for safety reasons.
	ErrContentBlocked = fmt.Errorf("%w: content blocked by safety filters", domain.ErrGeneration)

	// ErrTransientFailure is returned for failures that may succeed on retry
	// (rate limits, provider outages, timeouts).
	ErrTransientFailure = fmt.Errorf("%w: transient provider failure", domain.ErrGeneration)

	// ErrInvalidConfig is returned when a generator cannot be constructed.
	ErrInvalidConfig = errors.New("invalid generator configuration")
)

// IsRetryable reports whether err is worth retrying.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransientFailure)
}
