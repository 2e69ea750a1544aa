package extractor

import (
	"errors"
	"fmt"
)

// ErrParsingFailed signals that no valid JSON object was found in strict mode.
// Callers typically retry the model call with different sampling.
var ErrParsingFailed = errors.New("parsing failed: no valid JSON objects found")

// ExtractionError reports a strict extraction that produced no valid object.
type ExtractionError struct {
	Invalid []InvalidCandidate
}

func (e *ExtractionError) Error() string {
	if len(e.Invalid) == 0 {
		return ErrParsingFailed.Error()
	}
	return fmt.Sprintf("%s (%d invalid candidates, first: %s)", ErrParsingFailed.Error(), len(e.Invalid), e.Invalid[0].Error)
}

func (e *ExtractionError) Unwrap() error {
	return ErrParsingFailed
}

// IsParsingFailed reports whether err is an extraction failure.
func IsParsingFailed(err error) bool {
	return errors.Is(err, ErrParsingFailed)
}
