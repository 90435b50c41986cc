package cron

import (
	"context"
	"fmt"

	"github.com/okestore/storefront-sync/pkg/logger"
)

type dailyChecker interface {
	CheckDaily(ctx context.Context) (bool, error)
}

// NewDailyNotificationJob adds the day's automated notification without waiting for the
// notifications list to be opened.
func NewDailyNotificationJob(logg *logger.Logger, notifications dailyChecker) (Job, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if notifications == nil {
		return nil, fmt.Errorf("notifications service required")
	}
	return &dailyNotificationJob{logg: logg, notifications: notifications}, nil
}

type dailyNotificationJob struct {
	logg          *logger.Logger
	notifications dailyChecker
}

func (j *dailyNotificationJob) Name() string { return "daily-notification" }

func (j *dailyNotificationJob) Run(ctx context.Context) error {
	added, err := j.notifications.CheckDaily(ctx)
	if err != nil {
		return fmt.Errorf("daily notification: %w", err)
	}
	if added {
		j.logg.Info(ctx, "daily notification added")
	}
	return nil
}
