package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	expiryJobTimeout   = 5 * time.Minute
	dispatchJobTimeout = time.Minute
	dispatchBatchSize  = 100
)

type DBSExpirer interface {
	ExpireOverdue(ctx context.Context) (int, error)
}

type NotificationDispatcher interface {
	DispatchPending(ctx context.Context, limit int) (int, error)
}

// Scheduler runs the background jobs: the DBS expiry sweep and notification delivery
type Scheduler struct {
	cron         *cron.Cron
	expirer      DBSExpirer
	dispatcher   NotificationDispatcher
	expirySpec   string
	dispatchSpec string
	logger       *zap.Logger
	baseCtx      context.Context
	cancel       context.CancelFunc
}

func NewScheduler(
	expirer DBSExpirer,
	dispatcher NotificationDispatcher,
	expirySpec string,
	dispatchSpec string,
	logger *zap.Logger,
) *Scheduler {
	cronLogger := cronLogger{logger: logger.Named("cron").Sugar()}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		expirer:      expirer,
		dispatcher:   dispatcher,
		expirySpec:   expirySpec,
		dispatchSpec: dispatchSpec,
		logger:       logger,
	}
}

// Start registers the jobs and starts the cron engine. Jobs run with a
// context derived from ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	s.baseCtx, s.cancel = context.WithCancel(ctx)

	if _, err := s.cron.AddFunc(s.expirySpec, s.runExpiry); err != nil {
		s.cancel()
		return fmt.Errorf("add dbs expiry job %q: %w", s.expirySpec, err)
	}
	if _, err := s.cron.AddFunc(s.dispatchSpec, s.runDispatch); err != nil {
		s.cancel()
		return fmt.Errorf("add notification job %q: %w", s.dispatchSpec, err)
	}

	s.cron.Start()
	s.logger.Info("Background scheduler started",
		zap.String("dbs_expiry", s.expirySpec),
		zap.String("notifications", s.dispatchSpec))
	return nil
}

// Stop cancels running jobs and waits for them to return
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	if s.cancel != nil {
		s.cancel()
	}
	<-s.cron.Stop().Done()
	s.logger.Info("Background scheduler stopped")
}

func (s *Scheduler) runExpiry() {
	ctx, cancel := context.WithTimeout(s.baseCtx, expiryJobTimeout)
	defer cancel()

	n, err := s.expirer.ExpireOverdue(ctx)
	if err != nil {
		s.logger.Error("DBS expiry sweep failed", zap.Error(err))
		return
	}
	s.logger.Info("DBS expiry sweep completed", zap.Int("expired", n))
}

func (s *Scheduler) runDispatch() {
	ctx, cancel := context.WithTimeout(s.baseCtx, dispatchJobTimeout)
	defer cancel()

	if _, err := s.dispatcher.DispatchPending(ctx, dispatchBatchSize); err != nil {
		s.logger.Error("Notification dispatch failed", zap.Error(err))
	}
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	logger *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}
