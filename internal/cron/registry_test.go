package cron

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type namedJob string

func (n namedJob) Name() string              { return string(n) }
func (n namedJob) Run(context.Context) error { return nil }

func TestRegistryKeepsOrderAndCopies(t *testing.T) {
	registry := NewRegistry(namedJob("daily-notification"), nil, namedJob("verification-backlog"))

	jobs := registry.Jobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, "daily-notification", jobs[0].Name())
	assert.Equal(t, "verification-backlog", jobs[1].Name())

	jobs[0] = nil
	assert.NotNil(t, registry.Jobs()[0])
}

func TestRegistryRejectsDuplicateAndBlankNames(t *testing.T) {
	registry := NewRegistry(namedJob("daily-notification"))

	assert.Error(t, registry.Register(namedJob("daily-notification")))
	assert.Error(t, registry.Register(namedJob("  ")))
	assert.NoError(t, registry.Register(nil))
	assert.Len(t, registry.Jobs(), 1)
}

func TestZeroRegistryAcceptsJobs(t *testing.T) {
	var registry Registry
	require.NoError(t, registry.Register(namedJob("a")))
	assert.Len(t, registry.Jobs(), 1)
}
