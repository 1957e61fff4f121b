package remote

import "fmt"

// Redis key pattern helpers
//
// Keys are namespaced so several deployments (or test runs) can share one Redis
// server without seeing each other's boards.
//
// Key pattern: kanban:{namespace}:board:{identity}
// Channel pattern: kanban:{namespace}:board_events:{identity}

// BoardKey returns the Redis key holding the board record of an identity.
// Pattern: kanban:{namespace}:board:{identity}
func BoardKey(namespace, identity string) string {
	return fmt.Sprintf("kanban:%s:board:%s", namespace, identity)
}

// BoardEventsChannel returns the Pub/Sub channel announcing saves of an
// identity's board.
// Pattern: kanban:{namespace}:board_events:{identity}
func BoardEventsChannel(namespace, identity string) string {
	return fmt.Sprintf("kanban:%s:board_events:%s", namespace, identity)
}

// Hash field names of a board record.
const (
	fieldIdentity  = "identity"
	fieldBoardData = "board_data"
	fieldUpdatedAt = "updated_at"
	fieldStamp     = "stamp"
)
