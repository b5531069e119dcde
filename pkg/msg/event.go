package msg

type EventCode uint

const (
	// QueueUpdateCode wraps a full queue detail snapshot. Sent once
	// on subscribe and after every mutation of the service.
	QueueUpdateCode EventCode = 2000
)
