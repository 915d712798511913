package schema

// Status is a transient value describing the orchestrator's current activity.
// It is broadcast to registered observers and never persisted.
type Status string

const (
	// StatusIdle clears any previous status.
	StatusIdle Status = ""
	// StatusProcessing is published when a user turn starts dispatching.
	StatusProcessing Status = "processing"
	// StatusFallingBack is published when the primary model failed and the
	// fallback model is being tried.
	StatusFallingBack Status = "falling back"
)

// StatusToolRunning builds the status published before a tool executes.
func StatusToolRunning(friendlyName string) Status {
	return Status(friendlyName + " running")
}

// StatusError builds the terminal error status for a failed turn.
func StatusError(detail string) Status {
	return Status("error:" + detail)
}

// IsError reports whether s carries an error detail.
func (s Status) IsError() bool {
	return len(s) > 6 && s[:6] == "error:"
}
