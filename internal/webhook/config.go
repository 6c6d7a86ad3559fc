package webhook

import (
	"time"

	"github.com/zinc-sig/ftlaunch/internal/retry"
)

// Config holds webhook endpoint configuration
type Config struct {
	URL       string            // Webhook endpoint URL
	Method    string            // HTTP method (default: POST)
	Headers   map[string]string // Custom headers
	Timeout   time.Duration     // Overall timeout for all retries
	AuthType  string            // Authentication type: none, bearer, api-key
	AuthToken string            // Authentication token
}

// DefaultRetryPolicy returns the retry policy used when none is configured.
func DefaultRetryPolicy() *retry.Policy {
	return retry.DefaultPolicy()
}
