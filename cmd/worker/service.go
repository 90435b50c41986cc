package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okestore/storefront-sync/pkg/logger"
)

const heartbeatInterval = 30 * time.Second

type pinger interface {
	Ping(ctx context.Context) error
}

type runner interface {
	Run(ctx context.Context) error
}

// ServiceParams wires the worker. Audit and BigQuery are set together when the audit sink
// is enabled.
type ServiceParams struct {
	Logger    *logger.Logger
	Redis     pinger
	PubSub    pinger
	Remote    pinger
	Approvals runner
	Audit     runner
	BigQuery  pinger
}

type probe struct {
	name string
	dep  pinger
}

type consumer struct {
	name string
	run  runner
}

type Service struct {
	logg      *logger.Logger
	probes    []probe
	consumers []consumer
	heartbeat time.Duration
}

func NewService(params ServiceParams) (*Service, error) {
	var missing []error
	require := func(ok bool, what string) {
		if !ok {
			missing = append(missing, fmt.Errorf("%s is required", what))
		}
	}
	require(params.Logger != nil, "logger")
	require(params.Redis != nil, "redis client")
	require(params.PubSub != nil, "pubsub client")
	require(params.Remote != nil, "firestore client")
	require(params.Approvals != nil, "approvals consumer")
	require((params.Audit == nil) == (params.BigQuery == nil), "audit consumer and bigquery client together")
	if err := errors.Join(missing...); err != nil {
		return nil, err
	}

	s := &Service{
		logg: params.Logger,
		probes: []probe{
			{"redis", params.Redis},
			{"pubsub", params.PubSub},
			{"firestore", params.Remote},
		},
		consumers: []consumer{{"approvals", params.Approvals}},
		heartbeat: heartbeatInterval,
	}
	if params.Audit != nil {
		s.probes = append(s.probes, probe{"bigquery", params.BigQuery})
		s.consumers = append(s.consumers, consumer{"audit", params.Audit})
	}
	return s, nil
}

// ready pings every dependency concurrently and reports all failures together.
func (s *Service) ready(ctx context.Context) error {
	errs := make([]error, len(s.probes))
	var g errgroup.Group
	for i, p := range s.probes {
		g.Go(func() error {
			if err := p.dep.Ping(ctx); err != nil {
				s.logg.Error(s.logg.WithField(ctx, "dependency", p.name), "dependency ping failed", err)
				errs[i] = fmt.Errorf("%s: %w", p.name, err)
			}
			return nil
		})
	}
	_ = g.Wait()
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("worker not ready: %w", err)
	}
	s.logg.Info(ctx, "all worker dependencies are ready")
	return nil
}

// Run checks dependencies, then blocks on the consumers until ctx ends or one of them
// stops. A consumer returning while ctx is still live is treated as a failure.
func (s *Service) Run(ctx context.Context) error {
	if err := s.ready(ctx); err != nil {
		return err
	}

	group, groupCtx := errgroup.WithContext(ctx)
	for _, c := range s.consumers {
		group.Go(func() error {
			return s.consume(groupCtx, c)
		})
	}
	group.Go(func() error {
		ticker := time.NewTicker(s.heartbeat)
		defer ticker.Stop()
		for {
			select {
			case <-groupCtx.Done():
				return nil
			case <-ticker.C:
				s.logg.Debug(groupCtx, "worker heartbeat")
			}
		}
	})

	if err := group.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (s *Service) consume(ctx context.Context, c consumer) error {
	err := c.run.Run(ctx)
	switch {
	case err != nil && !errors.Is(err, context.Canceled):
		s.logg.Error(s.logg.WithField(ctx, "consumer", c.name), "consumer stopped unexpectedly", err)
		return fmt.Errorf("%s consumer: %w", c.name, err)
	case ctx.Err() == nil:
		return fmt.Errorf("%s consumer exited", c.name)
	default:
		return nil
	}
}
