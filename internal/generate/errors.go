package generate

import "fmt"

// GenerationError reports a failed generation round. Stage is "chat"
// for transport or model failures and "parse" for malformed responses.
type GenerationError struct {
	Stage string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed at %s: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
