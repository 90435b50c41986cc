// Package instance names the running process in logs and locks.
package instance

import (
	"os"

	"github.com/okestore/storefront-sync/pkg/env"
)

const fallbackID = "okestore-0"

// GetID prefers OKESTORE_INSTANCE_ID, then the host name the container runtime assigns.
func GetID() string {
	if id := env.First("", "OKESTORE_INSTANCE_ID", "HOSTNAME"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return fallbackID
}
