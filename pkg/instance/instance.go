package instance

import "os"

const envWorkerID = "TABLESIDE_WORKER_ID"

// GetID identifies the running worker process. It prefers the configured
// worker id, then the hostname.
func GetID() string {
	if id := os.Getenv(envWorkerID); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "worker-0"
}
