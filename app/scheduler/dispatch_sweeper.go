// Package scheduler runs periodic maintenance jobs next to the HTTP server
package scheduler

import (
	"context"
	"time"

	"github.com/amirphl/mini-crm/models"
	"github.com/amirphl/mini-crm/repository"
	"github.com/amirphl/mini-crm/utils"
	"go.uber.org/zap"
)

// DispatchSweeper marks campaigns stuck in the sending status as failed.
// A dispatch runs inside its HTTP request, so a campaign still sending long after any
// request could have finished belongs to a process that died mid-dispatch.
type DispatchSweeper struct {
	campaignRepo repository.CampaignRepository
	interval     time.Duration
	staleAfter   time.Duration
	logger       *zap.Logger
}

func NewDispatchSweeper(campaignRepo repository.CampaignRepository, interval, staleAfter time.Duration, logger *zap.Logger) *DispatchSweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DispatchSweeper{
		campaignRepo: campaignRepo,
		interval:     interval,
		staleAfter:   staleAfter,
		logger:       logger.Named("dispatch_sweeper"),
	}
}

// Start launches the sweep loop in a background goroutine and returns a stop function
func (s *DispatchSweeper) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.RunOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.RunOnce(ctx)
			}
		}
	}()

	return cancel
}

// RunOnce fails every stale sending campaign and returns how many were updated
func (s *DispatchSweeper) RunOnce(ctx context.Context) int {
	sending := models.CampaignStatusSending
	cutoff := utils.UTCNow().Add(-s.staleAfter)

	stale, err := s.campaignRepo.ByFilter(ctx, models.CampaignFilter{
		Status:        &sending,
		UpdatedBefore: &cutoff,
	}, "updated_at ASC", 100, 0)
	if err != nil {
		s.logger.Error("failed to list stale campaigns", zap.Error(err))
		return 0
	}

	failed := models.CampaignStatusFailed
	swept := 0
	for _, c := range stale {
		if _, err := s.campaignRepo.Update(ctx, c.ID, models.CampaignUpdate{Status: &failed}); err != nil {
			s.logger.Error("failed to mark stale campaign", zap.String("campaign_id", c.ID.String()), zap.Error(err))
			continue
		}
		swept++
		s.logger.Warn("stale campaign marked failed", zap.String("campaign_id", c.ID.String()))
	}
	return swept
}
