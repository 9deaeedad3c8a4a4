// Package notify implements the per-workflow progress throttle table and
// the NotifyProgress local activity.
//
// Grounded verbatim in semantics on the original source's
// workflows/progress_mixin.py and activities/notify.py: a 300ms
// per-workflow-id throttle, bypassed when status is terminal
// (completed/error), with the table self-pruning entries older than one
// hour whenever it exceeds 100 entries.
package notify

import (
	"sync"
	"time"

	"github.com/buun-ch/buun-curator-sub001/internal/curator/model"
)

// ThrottleInterval is the minimum spacing between two non-terminal
// notifies for the same workflow id.
const ThrottleInterval = 300 * time.Millisecond

// pruneAge is how old a throttle entry must be before it is eligible for
// removal during a prune pass.
const pruneAge = 1 * time.Hour

// pruneThreshold is the table size that triggers a prune pass.
const pruneThreshold = 100

// Table is the process-wide throttle map from workflow id to last-notify
// wall-clock time. It is safe for concurrent use; a worker process holds
// exactly one Table for the lifetime of the process.
type Table struct {
	mu       sync.Mutex
	lastSent map[string]time.Time
}

// NewTable returns an empty throttle table.
func NewTable() *Table {
	return &Table{lastSent: make(map[string]time.Time)}
}

// Allow reports whether a notify for workflowID with the given status
// should be forwarded to the broadcaster right now, and records that a
// notify happened if so. Terminal statuses always pass through: once
// status is completed or error, further updates bypass throttling.
func (t *Table) Allow(workflowID string, status model.Status, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if status.Terminal() {
		t.lastSent[workflowID] = now
		t.pruneLocked(now)
		return true
	}

	last, seen := t.lastSent[workflowID]
	if seen && now.Sub(last) < ThrottleInterval {
		return false
	}
	t.lastSent[workflowID] = now
	t.pruneLocked(now)
	return true
}

// pruneLocked removes stale entries when the table has grown past
// pruneThreshold. Callers must hold t.mu.
func (t *Table) pruneLocked(now time.Time) {
	if len(t.lastSent) <= pruneThreshold {
		return
	}
	for id, ts := range t.lastSent {
		if now.Sub(ts) > pruneAge {
			delete(t.lastSent, id)
		}
	}
}
