package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFuncJobRun(t *testing.T) {
	called := false
	FuncJob(func(ctx context.Context) { called = true }).Run(context.Background())
	assert.True(t, called)
}

func TestCronAdd(t *testing.T) {
	cr := NewCron(nil)

	_, err := cr.Add("@every 1h", FuncJob(func(ctx context.Context) {}))
	require.NoError(t, err)
	assert.Len(t, cr.Entries(), 1)

	_, err = cr.Add("not a schedule", FuncJob(func(ctx context.Context) {}))
	assert.Error(t, err)
}
