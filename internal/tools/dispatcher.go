// In file: internal/tools/dispatcher.go
package tools

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// Dispatcher routes tool-call directives from the LLM layer to registered
// handlers. It holds no state of its own beyond a reference to the registry
// and an optional metrics recorder.
//
// The dispatcher is a hard error boundary: whatever goes wrong below it,
// be it an unknown tool, a schema violation, a handler error, or a handler
// panic, comes back as a Failure result, never as a Go error or a panic. The
// failure text is fed back into the model's context so the model itself can
// decide whether to retry, choose a different tool, or give up.
type Dispatcher struct {
	registry *Registry
	metrics  *MetricsRecorder
}

// NewDispatcher creates a dispatcher over the given registry. The metrics
// recorder may be nil, in which case no metrics are recorded.
func NewDispatcher(registry *Registry, metrics *MetricsRecorder) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		metrics:  metrics,
	}
}

// Dispatch looks up the requested tool, validates the arguments against its
// declared schema, and invokes the handler. Side effects of the handler (e.g.
// an authenticated call to an external pipeline service) are opaque to the
// dispatcher and are not retried here.
func (d *Dispatcher) Dispatch(ctx context.Context, call ToolCall) Result {
	name := call.Function.Name

	tool, err := d.registry.Lookup(name)
	if err != nil {
		log.Printf("⚠️ Dispatch: %v", err)
		return Failure(fmt.Sprintf("unknown tool: %s", name))
	}

	if err := validateArguments(tool.Definition().Function.Parameters, call.Function.Arguments); err != nil {
		log.Printf("⚠️ Dispatch: tool %s rejected arguments: %v", name, err)
		d.record(ctx, name, 0, err)
		return Failure(err.Error())
	}

	started := time.Now()
	payload, err := d.execute(ctx, tool, call.Function.Arguments)
	elapsed := time.Since(started)
	d.record(ctx, name, elapsed, err)

	if err != nil {
		var herr *HandlerError
		if !errors.As(err, &herr) {
			herr = &HandlerError{Tool: name, Reason: err.Error()}
		}
		log.Printf("⚠️ Dispatch: %v", herr)
		return Failure(herr.Error())
	}

	log.Printf("🛠️ Tool %s completed in %dms", name, elapsed.Milliseconds())
	return Success(payload)
}

// execute invokes the handler, converting a panic into a HandlerError so the
// fault stops at the dispatcher boundary like any other handler failure.
func (d *Dispatcher) execute(ctx context.Context, tool ToolExecutor, arguments string) (payload string, err error) {
	name := tool.Definition().Function.Name
	defer func() {
		if r := recover(); r != nil {
			err = &HandlerError{Tool: name, Reason: fmt.Sprintf("panic: %v", r)}
		}
	}()

	payload, execErr := tool.Execute(ctx, arguments)
	if execErr != nil {
		return "", &HandlerError{Tool: name, Reason: execErr.Error()}
	}
	return payload, nil
}

func (d *Dispatcher) record(ctx context.Context, name string, elapsed time.Duration, err error) {
	if d.metrics == nil {
		return
	}
	if err != nil {
		d.metrics.RecordFailure(ctx, name, err)
	} else {
		d.metrics.RecordSuccess(ctx, name, elapsed)
	}
}
