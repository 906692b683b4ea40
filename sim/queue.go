// Implements the MaterialQueue, the FIFO buffer of part identifiers in
// front of and behind each machine.

package sim

import (
	"fmt"
	"strings"
)

// MaterialQueue is a FIFO queue of part identifiers. Each machine owns
// two: queue_in (material waiting to be processed) and queue_out
// (finished material waiting for the orchestrator to collect it).
type MaterialQueue struct {
	items []string
}

// Push adds a part to the back of the queue.
func (q *MaterialQueue) Push(partID string) {
	q.items = append(q.items, partID)
}

// Pop removes and returns the part at the front of the queue.
// Returns "" when the queue is empty.
func (q *MaterialQueue) Pop() string {
	if len(q.items) == 0 {
		return ""
	}
	item := q.items[0]
	q.items = q.items[1:]
	return item
}

// Drain removes and returns all queued parts in FIFO order.
func (q *MaterialQueue) Drain() []string {
	items := q.items
	q.items = nil
	return items
}

// Len returns the number of queued parts.
func (q *MaterialQueue) Len() int {
	return len(q.items)
}

func (q *MaterialQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, item := range q.items {
		sb.WriteString(fmt.Sprint(item))
		if i < len(q.items)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}
