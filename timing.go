// FILE: lixenwraith/goodconf/timing.go
package goodconf

import "time"

// Timing constants for file watching.
const (
	MinDebounce     = 10 * time.Millisecond  // Hard floor for change coalescence
	DefaultDebounce = 500 * time.Millisecond // File change coalescence period
)
