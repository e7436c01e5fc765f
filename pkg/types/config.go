package types

import "time"

// HTTPConfig holds shared HTTP settings for backend requests.
type HTTPConfig struct {
	// Timeout bounds each backend request. Transitions that exceed it
	// fall into the re-fetch reconciliation path rather than failing
	// outright.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with backend requests
	// (e.g. "journal/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// BackendConfig holds settings for the journal backend service.
type BackendConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the backend root, without a trailing slash.
	BaseURL string `json:"base_url" yaml:"base_url"`
}

// CacheConfig holds settings for the local durable review cache.
type CacheConfig struct {
	// Dir is the directory holding the cache database (default ".journal").
	Dir string `json:"dir" yaml:"dir"`
}

// IdentityConfig holds the acting user's identity. The email is the
// sole authorization signal sent to the backend (X-User-Email header);
// no cryptographic auth happens client-side.
type IdentityConfig struct {
	Email string `json:"email" yaml:"email"`
}

// ClientConfig groups all client configuration.
type ClientConfig struct {
	Backend  BackendConfig  `json:"backend" yaml:"backend"`
	Cache    CacheConfig    `json:"cache" yaml:"cache"`
	Identity IdentityConfig `json:"identity" yaml:"identity"`
}
