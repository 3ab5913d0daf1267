package job

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmdbkit/cmdbkit/pkg/model"
)

func TestRegistryResolve(t *testing.T) {
	r := NewRegistry()

	called := false
	r.Register(model.JobOperationCreate, func(ctx context.Context, j *model.Job) error {
		called = true
		return nil
	})

	h, err := r.Resolve(model.JobOperationCreate)
	require.NoError(t, err)
	require.NoError(t, h(context.Background(), &model.Job{}))
	assert.True(t, called)
}

func TestRegistryResolveUnknown(t *testing.T) {
	r := NewRegistry()
	_, err := r.Resolve(model.JobOperationExport)
	assert.Error(t, err)
}

func TestRegistryReplaceHandler(t *testing.T) {
	r := NewRegistry()

	r.Register(model.JobOperationEdit, func(ctx context.Context, j *model.Job) error { return nil })

	replaced := false
	r.Register(model.JobOperationEdit, func(ctx context.Context, j *model.Job) error {
		replaced = true
		return nil
	})

	h, err := r.Resolve(model.JobOperationEdit)
	require.NoError(t, err)
	require.NoError(t, h(context.Background(), &model.Job{}))
	assert.True(t, replaced)
}
