package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const jobTimeout = 2 * time.Minute

// DigestSource builds the daily shortage digest and publishes lists.
type DigestSource interface {
	Digest(ctx context.Context) (string, error)
	PublishAll(ctx context.Context) error
}

// GroupSender posts a message to the team group.
type GroupSender interface {
	SendToGroup(ctx context.Context, message string) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	schedule string
	digest   DigestSource
	sender   GroupSender
	logger   *zap.Logger
}

// NewScheduler creates a scheduler that runs the digest on schedule in loc.
// sender may be nil when messaging is disabled.
func NewScheduler(schedule string, loc *time.Location, digest DigestSource, sender GroupSender, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		schedule: schedule,
		digest:   digest,
		sender:   sender,
		logger:   logger,
	}
}

// Start registers the digest job and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.runDigest); err != nil {
		return fmt.Errorf("schedule digest %q: %w", s.schedule, err)
	}

	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runDigest() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	s.RunOnce(ctx)
}

// RunOnce sends the digest and publishes the lists immediately.
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.logger.Info("generating shortage digest")

	text, err := s.digest.Digest(ctx)
	if err != nil {
		s.logger.Error("digest incomplete", zap.Error(err))
	}

	if text != "" && s.sender != nil {
		if err := s.sender.SendToGroup(ctx, text); err != nil {
			s.logger.Error("failed to send digest", zap.Error(err))
		} else {
			s.logger.Info("digest sent")
		}
	}

	if err := s.digest.PublishAll(ctx); err != nil {
		s.logger.Error("failed to publish shopping lists", zap.Error(err))
	}
}
