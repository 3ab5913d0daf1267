package job

import (
	"context"
	"fmt"

	"github.com/cmdbkit/cmdbkit/pkg/model"
)

// Handler executes one job. Returning an error marks the job failed; the
// error text is recorded on the job row.
type Handler func(ctx context.Context, j *model.Job) error

// Registry maps operations to handlers. Dispatch is by operation alone, so
// adding a new job kind means registering one handler, not touching the
// runner.
type Registry struct {
	handlers map[model.JobOperation]Handler
}

// NewRegistry creates a new Registry
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[model.JobOperation]Handler)}
}

// Register binds a handler to an operation, replacing any previous binding.
func (r *Registry) Register(op model.JobOperation, h Handler) {
	r.handlers[op] = h
}

// Resolve returns the handler for an operation.
func (r *Registry) Resolve(op model.JobOperation) (Handler, error) {
	h, ok := r.handlers[op]
	if !ok {
		return nil, fmt.Errorf("no handler registered for operation %q", op)
	}
	return h, nil
}
