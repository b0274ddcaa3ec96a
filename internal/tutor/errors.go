package tutor

import (
	"fmt"

	"github.com/paperlab/oshiete/pkg/utils"
)

// ExtractionError means the uploaded document could not be converted to text.
// The upload attempt is over; the user must upload again.
type ExtractionError struct {
	Filename string
	Err      error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("could not read %q: %v; please make sure you uploaded a valid document", e.Filename, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// SizeExceededError means the extracted text is beyond the hard limit.
// No session is created and the text is discarded.
type SizeExceededError struct {
	Chars    int
	MaxChars int
}

func (e *SizeExceededError) Error() string {
	return fmt.Sprintf("paper is too large: %s characters extracted, limit is %s; please upload a shorter document",
		utils.FormatCount(e.Chars), utils.FormatCount(e.MaxChars))
}

// BackendInitError means the conversation session could not be constructed.
// The paper text is retained so initialization can be retried without re-extracting.
type BackendInitError struct {
	Err error
}

func (e *BackendInitError) Error() string {
	return fmt.Sprintf("could not start the tutoring session: %v", e.Err)
}

func (e *BackendInitError) Unwrap() error { return e.Err }

// BackendCallError means a single turn failed. The session stays usable.
type BackendCallError struct {
	Err error
}

func (e *BackendCallError) Error() string {
	return fmt.Sprintf("Error generating response: %v", e.Err)
}

func (e *BackendCallError) Unwrap() error { return e.Err }

// SizeWarning is the advisory message attached to an upload whose text is
// above the warning threshold but within the hard limit.
func SizeWarning(chars, warningChars int) string {
	return fmt.Sprintf("paper is large: %s characters extracted (warning threshold %s); responses may be slower and less focused",
		utils.FormatCount(chars), utils.FormatCount(warningChars))
}
