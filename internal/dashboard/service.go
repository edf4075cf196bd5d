package dashboard

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-maintenance/internal/fleet"
	"github.com/ukydev/fleet-maintenance/internal/models"
)

// Publisher forwards synthesized notifications to an alert channel.
type Publisher interface {
	Publish(ctx context.Context, items []models.NotificationItem) error
}

// Service loads fleet snapshots and serves dashboard views, caching the
// computed stats per day.
type Service struct {
	Source     fleet.Source
	Aggregator *Aggregator
	Cache      Cache
	Publisher  Publisher
	Now        func() time.Time
	log        logrus.FieldLogger
}

// NewService wires a dashboard service. cache and publisher may be nil.
func NewService(src fleet.Source, agg *Aggregator, cache Cache, publisher Publisher, logger logrus.FieldLogger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if cache == nil {
		cache = NopCache{}
	}
	return &Service{
		Source:     src,
		Aggregator: agg,
		Cache:      cache,
		Publisher:  publisher,
		Now:        time.Now,
		log:        logger,
	}
}

// Today returns the current calendar day.
func (s *Service) Today() time.Time {
	return models.Day(s.Now())
}

// Snapshot loads a fresh snapshot from the source.
func (s *Service) Snapshot(ctx context.Context) (*fleet.Snapshot, error) {
	return fleet.Load(ctx, s.Source, s.log)
}

// Stats returns today's dashboard stats. On a cache miss they are computed from
// a fresh snapshot, cached, and the day's notifications are published.
// Cache failures are logged and never fail the request.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	today := s.Today()
	day := models.FormatDate(today)
	if cached, ok, err := s.Cache.Get(ctx, day); err != nil {
		s.log.WithError(err).Warn("Dashboard cache lookup failed")
	} else if ok {
		return *cached, nil
	}

	snap, err := s.Snapshot(ctx)
	if err != nil {
		return Stats{}, err
	}
	stats := s.Aggregator.Compute(snap, today)
	if err := s.Cache.Set(ctx, day, stats); err != nil {
		s.log.WithError(err).Warn("Failed to cache dashboard stats")
	}
	if s.Publisher != nil {
		items := s.Aggregator.Notifications(snap, today, nil)
		if err := s.Publisher.Publish(ctx, items); err != nil {
			s.log.WithError(err).Warn("Failed to publish notifications")
		}
	}
	return stats, nil
}

// Invalidate drops cached stats after a write.
func (s *Service) Invalidate(ctx context.Context) {
	if err := s.Cache.Invalidate(ctx); err != nil {
		s.log.WithError(err).Warn("Failed to invalidate dashboard cache")
	}
}
