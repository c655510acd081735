// Package reaper runs the background sweep that expires stale
// reservations. It is a scheduled worker with an explicit start/stop
// lifecycle, not a fire-and-forget interval.
package reaper

import (
	"context"
	"time"

	"github.com/stockward/inventory-service/internal/apperr"
	"github.com/stockward/inventory-service/internal/pkg/clock"
	"github.com/stockward/inventory-service/internal/reservation"
	"go.uber.org/zap"
)

const sweepBatchSize = 100

type Reaper struct {
	repo     reservation.Repository
	uc       reservation.UseCase
	interval time.Duration
	clock    clock.Clock
	logger   *zap.Logger

	stop chan struct{}
	done chan struct{}
}

func New(repo reservation.Repository, uc reservation.UseCase, interval time.Duration, clk clock.Clock, log *zap.Logger) *Reaper {
	return &Reaper{
		repo:     repo,
		uc:       uc,
		interval: interval,
		clock:    clk,
		logger:   log,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (r *Reaper) Start(ctx context.Context) {
	go r.run(ctx)
}

// Stop signals the loop and waits for the in-flight sweep to finish.
func (r *Reaper) Stop() {
	close(r.stop)
	<-r.done
}

func (r *Reaper) run(ctx context.Context) {
	defer close(r.done)
	r.logger.Info("starting reservation reaper", zap.Duration("interval", r.interval))

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("stopping reservation reaper")
			return
		case <-r.stop:
			r.logger.Info("stopping reservation reaper")
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Sweep cancels every expired RESERVED reservation. Each cancellation
// goes through the same path as an explicit cancel, so racing with one
// is settled by the status compare-and-set: the loser sees the terminal
// state and moves on. A single failure never aborts the sweep.
func (r *Reaper) Sweep(ctx context.Context) {
	now := r.clock.Now()
	expired, err := r.repo.FindExpired(ctx, now, sweepBatchSize)
	if err != nil {
		r.logger.Error("reaper failed to list expired reservations", zap.Error(err))
		return
	}
	if len(expired) == 0 {
		return
	}

	r.logger.Info("reaping expired reservations", zap.Int("count", len(expired)))
	for _, res := range expired {
		if _, err := r.uc.Cancel(ctx, res.ID, "reaper"); err != nil {
			if apperr.Is(err, apperr.KindStateTransition) {
				// Lost the race with an explicit cancel or confirm.
				continue
			}
			r.logger.Error("reaper failed to cancel reservation",
				zap.String("reservation_id", res.ID),
				zap.Error(err),
			)
		}
	}
}
