package durable

import (
	"go.temporal.io/sdk/worker"
)

// NewWorker returns a Temporal worker bound to the client's task queue.
// Concurrency limits are left to the SDK's defaults; operators tune them
// via worker.Options in cmd/worker if needed.
func (c *Client) NewWorker(opts worker.Options) worker.Worker {
	return worker.New(c.Temporal, c.TaskQueue, opts)
}
