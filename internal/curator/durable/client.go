// Package durable wraps go.temporal.io/sdk/client with a small surface:
// Connect, StartWorkflow (fire-and-forget), ExecuteWorkflow
// (start-and-await), and QueryWorkflow.
//
// Grounded on runtime/agent/engine/temporal/engine.go (client
// construction, OTEL instrumentation wiring) and workflow_context.go
// (retry-policy conversion, cancellation-error normalization), with the
// generic engine.Engine interface layer deliberately not reproduced: this
// module has a small, fixed set of concrete workflow/activity functions,
// so the indirection that layer needs to support pluggable backends
// would be unused abstraction here (see DESIGN.md).
package durable

import (
	"context"
	"fmt"
	"time"

	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	"go.temporal.io/sdk/temporal"

	"github.com/buun-ch/buun-curator-sub001/internal/curator/config"
	"github.com/buun-ch/buun-curator-sub001/internal/curator/wire"
)

// Client wraps a Temporal client with the curator wire codec installed.
type Client struct {
	Temporal  client.Client
	TaskQueue string
}

// Connect dials the Temporal frontend using cfg and installs the curator
// data converter (camelCase, case-insensitive decode).
func Connect(cfg config.Config) (*Client, error) {
	opts := client.Options{
		HostPort:      cfg.TemporalHost,
		Namespace:     cfg.TemporalNamespace,
		DataConverter: wire.NewDataConverter(),
	}
	if cfg.OTELTracingEnabled {
		tracer, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{})
		if err != nil {
			return nil, fmt.Errorf("durable: configure tracing interceptor: %w", err)
		}
		opts.Interceptors = append(opts.Interceptors, tracer)
		opts.MetricsHandler = temporalotel.NewMetricsHandler(temporalotel.MetricsHandlerOptions{})
	}
	c, err := client.Dial(opts)
	if err != nil {
		return nil, fmt.Errorf("durable: connect to temporal: %w", err)
	}
	return &Client{Temporal: c, TaskQueue: cfg.TemporalTaskQueue}, nil
}

// Close releases the underlying Temporal client connection.
func (c *Client) Close() {
	c.Temporal.Close()
}

// RetryPolicy is a provider-agnostic retry policy; ToTemporal converts it
// to *temporal.RetryPolicy for activity options.
type RetryPolicy struct {
	MaximumAttempts    int32
	InitialInterval    time.Duration
	MaximumInterval    time.Duration
	BackoffCoefficient float64
}

// DefaultRetryPolicy is the default retry policy applied to activities
// unless a workflow overrides it.
var DefaultRetryPolicy = RetryPolicy{
	MaximumAttempts:    3,
	InitialInterval:    1 * time.Second,
	MaximumInterval:    60 * time.Second,
	BackoffCoefficient: 2,
}

// ToTemporal converts to the SDK's retry policy type, omitting zero
// fields so the SDK's own defaults apply where this policy doesn't
// specify a value.
func (r RetryPolicy) ToTemporal() *temporal.RetryPolicy {
	p := &temporal.RetryPolicy{}
	if r.MaximumAttempts > 0 {
		p.MaximumAttempts = r.MaximumAttempts
	}
	if r.InitialInterval > 0 {
		p.InitialInterval = r.InitialInterval
	}
	if r.MaximumInterval > 0 {
		p.MaximumInterval = r.MaximumInterval
	}
	if r.BackoffCoefficient > 0 {
		p.BackoffCoefficient = r.BackoffCoefficient
	}
	return p
}

// StartWorkflowOptions is the curator-facing subset of client.StartWorkflowOptions.
type StartWorkflowOptions struct {
	ID        string
	TaskQueue string
}

func (o StartWorkflowOptions) resolve(defaultQueue string) client.StartWorkflowOptions {
	queue := o.TaskQueue
	if queue == "" {
		queue = defaultQueue
	}
	return client.StartWorkflowOptions{ID: o.ID, TaskQueue: queue}
}

// StartWorkflow submits a workflow without awaiting its result. Duplicate
// IDs for a still-running workflow return client.ErrWorkflowAlreadyRunning,
// giving idempotent submission natively from Temporal.
func (c *Client) StartWorkflow(ctx context.Context, opts StartWorkflowOptions, workflowType string, arg any) (client.WorkflowRun, error) {
	return c.Temporal.ExecuteWorkflow(ctx, opts.resolve(c.TaskQueue), workflowType, arg)
}

// ExecuteWorkflow starts a workflow and blocks until it completes,
// decoding the result into out.
func (c *Client) ExecuteWorkflow(ctx context.Context, opts StartWorkflowOptions, workflowType string, arg any, out any) error {
	run, err := c.StartWorkflow(ctx, opts, workflowType, arg)
	if err != nil {
		return err
	}
	return run.Get(ctx, out)
}

// QueryWorkflow issues a query to a running or completed workflow
// instance and decodes the result into out.
func (c *Client) QueryWorkflow(ctx context.Context, workflowID, runID, queryType string, out any, args ...any) error {
	resp, err := c.Temporal.QueryWorkflow(ctx, workflowID, runID, queryType, args...)
	if err != nil {
		return fmt.Errorf("durable: query workflow %s: %w", workflowID, err)
	}
	return resp.Get(out)
}
