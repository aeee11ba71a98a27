// Package schedule drives Manager.RotateFiles from a durable Temporal
// workflow instead of the in-process clock, for deployments that want
// rotation demands to survive a process restart. Optional: a Manager
// with no worker bound to it simply never rotates on this path, and
// falls back to the manual/scheduler-free Manager.RotateFiles call. Grounded
// on examples/orderflow's worker.New/RegisterWorkflow/RegisterActivity
// shape (run.go), adapted from order-status activities to rotation.
package schedule

import (
	"context"
	"time"

	"github.com/matgreaves/evtrace/manager"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"
)

// TaskQueue is the Temporal task queue rotation workflows run on.
const TaskQueue = "evtrace-rotation"

// RotationActivities binds a Manager to the Temporal activities that
// drive it.
type RotationActivities struct {
	Mgr *manager.Manager
}

// RotateFiles forces a rotation pass, reporting whether it actually ran
// (the Manager's own throttle may have suppressed it).
func (a *RotationActivities) RotateFiles(ctx context.Context) (bool, error) {
	return a.Mgr.RotateFiles(), nil
}

// RotationWorkflow calls RotateFiles on a fixed interval until cancelled
// or an activity attempt is exhausted.
func RotationWorkflow(ctx workflow.Context, interval time.Duration) error {
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	for {
		if err := workflow.ExecuteActivity(ctx, (*RotationActivities).RotateFiles).Get(ctx, nil); err != nil {
			return err
		}
		if err := workflow.Sleep(ctx, interval); err != nil {
			return err
		}
	}
}

// StartWorker starts a Temporal worker bound to mgr on TaskQueue. Callers
// own the returned worker's lifetime and must call Stop on shutdown.
func StartWorker(c client.Client, mgr *manager.Manager) (worker.Worker, error) {
	w := worker.New(c, TaskQueue, worker.Options{})
	w.RegisterWorkflow(RotationWorkflow)
	w.RegisterActivity(&RotationActivities{Mgr: mgr})
	if err := w.Start(); err != nil {
		return nil, err
	}
	return w, nil
}
