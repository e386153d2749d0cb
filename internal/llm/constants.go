// In file: internal/llm/constants.go
package llm

import "time"

// Constants shared across the provider clients in this package.
const (
	defaultTimeout    = 120 * time.Second
	maxRetries        = 3
	initialRetryDelay = 2 * time.Second
)
