package instance

import "os"

// GetID identifies this worker process in logs. Deployments set WORKER_ID;
// local runs fall back to a fixed name.
func GetID() string {
	if id := os.Getenv("WORKER_ID"); id != "" {
		return id
	}
	return "worker-0"
}
