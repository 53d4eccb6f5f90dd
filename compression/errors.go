package compression

import "fmt"

// CompressionError reports a failed transform. The underlying message is
// carried so it can be surfaced to the user.
type CompressionError struct {
	SourcePath string
	InnerError error
}

func (e *CompressionError) Error() string {
	return fmt.Sprintf("failed to compress %s: %v", e.SourcePath, e.InnerError)
}

func (e *CompressionError) Unwrap() error {
	return e.InnerError
}

// IsCompressionError checks if the error is a CompressionError
func IsCompressionError(err error) bool {
	_, ok := err.(*CompressionError)
	return ok
}
