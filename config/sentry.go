package config

// SentryConfig enables error reporting of failed runs. An empty DSN
// disables it.
type SentryConfig struct {
	DSN         string `json:"dsn"`
	Environment string `json:"environment"`
	Release     string `json:"release"`
	// Debug prints the SDK diagnostics to stderr.
	Debug bool `json:"debug"`
}
