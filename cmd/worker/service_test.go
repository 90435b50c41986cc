package main

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okestore/storefront-sync/pkg/logger"
)

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type runFunc func(context.Context) error

func (f runFunc) Run(ctx context.Context) error { return f(ctx) }

var up = pingFunc(func(context.Context) error { return nil })

func blockUntilDone(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func baseParams() ServiceParams {
	return ServiceParams{
		Logger:    logger.Nop(),
		Redis:     up,
		PubSub:    up,
		Remote:    up,
		Approvals: runFunc(blockUntilDone),
	}
}

func TestNewServiceValidation(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logger is required")
	assert.Contains(t, err.Error(), "approvals consumer is required")

	params := baseParams()
	params.Audit = runFunc(blockUntilDone)
	_, err = NewService(params)
	require.ErrorContains(t, err, "together")

	params.BigQuery = up
	svc, err := NewService(params)
	require.NoError(t, err)
	assert.Len(t, svc.consumers, 2)
	assert.Len(t, svc.probes, 4)
}

func TestRunFailsWhenDependencyIsDown(t *testing.T) {
	params := baseParams()
	params.PubSub = pingFunc(func(context.Context) error { return errors.New("permission denied") })
	params.Remote = pingFunc(func(context.Context) error { return errors.New("unavailable") })
	started := false
	params.Approvals = runFunc(func(context.Context) error { started = true; return nil })

	svc, err := NewService(params)
	require.NoError(t, err)
	err = svc.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pubsub: permission denied")
	assert.Contains(t, err.Error(), "firestore: unavailable")
	assert.False(t, started)
}

func TestRunStopsOnCancel(t *testing.T) {
	svc, err := NewService(baseParams())
	require.NoError(t, err)
	svc.heartbeat = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestRunFailsWhenConsumerExits(t *testing.T) {
	params := baseParams()
	params.Approvals = runFunc(func(context.Context) error { return nil })
	svc, err := NewService(params)
	require.NoError(t, err)

	err = svc.Run(context.Background())
	require.ErrorContains(t, err, "approvals consumer exited")
}

func TestRunPropagatesConsumerError(t *testing.T) {
	params := baseParams()
	params.Audit = runFunc(func(context.Context) error { return errors.New("subscription not found") })
	params.BigQuery = up
	svc, err := NewService(params)
	require.NoError(t, err)

	err = svc.Run(context.Background())
	require.ErrorContains(t, err, "audit consumer: subscription not found")
}
