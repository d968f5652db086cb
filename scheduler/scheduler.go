// Package scheduler drives the three unattended background loops: periodic
// retrieval for tracked symbols, raw-file processing, and dead-letter
// requeueing. The loops share nothing but the filesystem areas and tolerate
// each other's concurrent progress.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Stargazers-Consulting-LLC/creampie-sub000/faults"
	"github.com/Stargazers-Consulting-LLC/creampie-sub000/fetcher"
	"github.com/Stargazers-Consulting-LLC/creampie-sub000/ingest"
)

type Config struct {
	UpdateInterval      time.Duration
	FileProcessInterval time.Duration
	DeadLetterInterval  time.Duration
	HistoryDays         int
}

// SymbolSource is the tracked-symbol view the retrieval loop consumes;
// *tracker.Service is the production implementation.
type SymbolSource interface {
	ActiveSymbols(ctx context.Context) ([]string, error)
	RecordPullResult(ctx context.Context, symbol string, pullErr error) error
}

type Scheduler struct {
	cron      *cron.Cron
	tracker   SymbolSource
	retriever *fetcher.Retriever
	processor *ingest.Processor
	cfg       Config
	log       *zap.Logger
	ctx       context.Context

	retrievalID cron.EntryID
}

func New(ctx context.Context, cfg Config, tr SymbolSource, r *fetcher.Retriever, p *ingest.Processor, log *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		tracker:   tr,
		retriever: r,
		processor: p,
		cfg:       cfg,
		log:       log,
		ctx:       ctx,
	}
}

// Start registers the three loops and starts the cron runner.
func (s *Scheduler) Start() error {
	id, err := s.cron.AddFunc(every(s.cfg.UpdateInterval), s.retrievalJob)
	if err != nil {
		return fmt.Errorf("register retrieval loop: %w", err)
	}
	s.retrievalID = id

	if _, err := s.cron.AddFunc(every(s.cfg.FileProcessInterval), s.fileProcessJob); err != nil {
		return fmt.Errorf("register file processing loop: %w", err)
	}
	if _, err := s.cron.AddFunc(every(s.cfg.DeadLetterInterval), s.deadLetterJob); err != nil {
		return fmt.Errorf("register dead letter loop: %w", err)
	}

	s.cron.Start()
	s.log.Info("scheduler started",
		zap.Duration("update_interval", s.cfg.UpdateInterval),
		zap.Duration("file_process_interval", s.cfg.FileProcessInterval),
		zap.Duration("dead_letter_interval", s.cfg.DeadLetterInterval))
	return nil
}

// Stop halts the cron runner and waits for in-flight jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// retrievalJob pulls fresh data for every active symbol. One symbol's
// failure is recorded and never blocks the others. A critical failure
// loading the symbol list stops this loop for good; a transient one is
// retried on the next tick.
func (s *Scheduler) retrievalJob() {
	if s.ctx.Err() != nil {
		return
	}

	symbols, err := s.tracker.ActiveSymbols(s.ctx)
	if err != nil {
		if faults.IsCritical(err) {
			s.log.Error("stopping retrieval loop after critical failure", zap.Error(err))
			s.cron.Remove(s.retrievalID)
			return
		}
		s.log.Error("could not load tracked symbols", zap.Error(err))
		return
	}

	end := time.Now()
	start := end.AddDate(0, 0, -s.cfg.HistoryDays)
	for _, sym := range symbols {
		if s.ctx.Err() != nil {
			return
		}

		_, pullErr := s.retriever.GetHistoricalData(s.ctx, sym, start, end)
		if pullErr != nil {
			s.log.Warn("retrieval failed", zap.String("symbol", sym), zap.Error(pullErr))
		}
		if err := s.tracker.RecordPullResult(s.ctx, sym, pullErr); err != nil {
			s.log.Error("could not record pull result",
				zap.String("symbol", sym), zap.Error(err))
		}
	}
}

func (s *Scheduler) fileProcessJob() {
	if s.ctx.Err() != nil {
		return
	}
	if err := s.processor.ProcessRawFiles(s.ctx); err != nil {
		if faults.IsCritical(err) {
			s.log.Error("critical file processing failure", zap.Error(err))
			return
		}
		s.log.Warn("file processing failed", zap.Error(err))
	}
}

func (s *Scheduler) deadLetterJob() {
	if s.ctx.Err() != nil {
		return
	}
	if err := s.processor.RequeueDeadLetters(s.ctx); err != nil {
		s.log.Warn("dead letter requeue failed", zap.Error(err))
	}
}

func every(d time.Duration) string {
	return fmt.Sprintf("@every %s", d)
}
