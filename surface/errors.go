package surface

import "fmt"

// SurfaceUnavailableError reports that a surface cannot produce frames, either
// because it was closed or because its size is unusable.
type SurfaceUnavailableError struct {
	Reason string
}

// Error implements the error interface.
func (e *SurfaceUnavailableError) Error() string {
	return fmt.Sprintf("surface unavailable: %s", e.Reason)
}
