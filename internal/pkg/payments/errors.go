package payments

import "fmt"

// GatewayError is a failure reported by an external payment gateway. The
// message is safe to surface to clients.
type GatewayError struct {
	Gateway string
	Message string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s: %s", e.Gateway, e.Message)
}

// ConfigError signals a missing server-side credential. Handlers translate
// it to a 500 so a misconfigured deployment is visible without leaking the
// key name to logs only.
type ConfigError struct {
	Key string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("Server Configuration Error: %s missing", e.Key)
}
