package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/okestore/storefront-sync/pkg/logger"
	"github.com/okestore/storefront-sync/pkg/models"
)

const defaultBacklogThreshold = 24 * time.Hour

type pendingLister interface {
	Pending(ctx context.Context) ([]models.VerificationRequest, error)
}

type VerificationBacklogJobParams struct {
	Logger        *logger.Logger
	Verifications pendingLister
	// Threshold is the age after which a pending request is reported as stale.
	Threshold time.Duration
	Now       func() time.Time
}

// NewVerificationBacklogJob reports pending payment claims that have waited too long for
// an operator.
func NewVerificationBacklogJob(params VerificationBacklogJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Verifications == nil {
		return nil, fmt.Errorf("verification service required")
	}
	threshold := params.Threshold
	if threshold <= 0 {
		threshold = defaultBacklogThreshold
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &verificationBacklogJob{
		logg:          params.Logger,
		verifications: params.Verifications,
		threshold:     threshold,
		now:           now,
	}, nil
}

type verificationBacklogJob struct {
	logg          *logger.Logger
	verifications pendingLister
	threshold     time.Duration
	now           func() time.Time
}

func (j *verificationBacklogJob) Name() string { return "verification-backlog" }

func (j *verificationBacklogJob) Run(ctx context.Context) error {
	pending, err := j.verifications.Pending(ctx)
	if err != nil {
		return fmt.Errorf("list pending verifications: %w", err)
	}

	now := j.now()
	stale := 0
	var oldest time.Duration
	for _, req := range pending {
		requested, err := time.Parse(time.RFC3339, req.RequestDate)
		if err != nil {
			continue
		}
		age := now.Sub(requested)
		if age > oldest {
			oldest = age
		}
		if age >= j.threshold {
			stale++
		}
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"pending":        len(pending),
		"stale":          stale,
		"oldest_minutes": int(oldest.Minutes()),
	})
	if stale > 0 {
		j.logg.Warn(logCtx, "verification requests waiting past threshold")
		return nil
	}
	j.logg.Info(logCtx, "verification backlog checked")
	return nil
}
