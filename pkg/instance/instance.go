package instance

import "github.com/angelmondragon/storefront-backend/pkg/env"

// ID identifies the running process in logs. It prefers the platform dyno
// name, then the host name, and falls back to "local".
func ID() string {
	return env.First("local", "DYNO", "HOSTNAME")
}
