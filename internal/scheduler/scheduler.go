package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/gelateria/internal/domain/models"
	"github.com/mamadbah2/gelateria/internal/service/export"
)

// LedgerRange is the sheet range daily ledger rows are appended to.
const LedgerRange = "Ledger!A:E"

const jobTimeout = 2 * time.Minute

// SnapshotSource exposes the ledger's current collections.
type SnapshotSource interface {
	Snapshot() models.Snapshot
}

// RowAppender receives the day's ledger rows.
type RowAppender interface {
	AppendRows(ctx context.Context, sheetRange string, rows [][]string) error
}

// Summarizer produces the stock summary text.
type Summarizer interface {
	Summarize(ctx context.Context, buckets []models.Bucket, flavors []models.Flavor) string
}

// MessageSender delivers the summary.
type MessageSender interface {
	SendText(ctx context.Context, to, body string) ([]string, error)
}

// Options wires the scheduler. Sheet and Sender are optional; a nil value
// disables that job.
type Options struct {
	Schedule  string
	Location  *time.Location
	Source    SnapshotSource
	Advisor   Summarizer
	Sheet     RowAppender
	Sender    MessageSender
	Recipient string
}

// Scheduler runs the end-of-day jobs.
type Scheduler struct {
	cron   *cron.Cron
	opts   Options
	now    func() time.Time
	logger *zap.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(opts Options, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	return &Scheduler{
		cron:   cron.New(cron.WithLocation(opts.Location)),
		opts:   opts,
		now:    time.Now,
		logger: logger,
	}
}

// Start registers the daily job and starts the cron loop.
func (s *Scheduler) Start() error {
	if s.opts.Sheet == nil && s.opts.Sender == nil {
		s.logger.Info("no report sinks configured, scheduler idle")
		return nil
	}

	if _, err := s.cron.AddFunc(s.opts.Schedule, s.runDaily); err != nil {
		return fmt.Errorf("schedule daily report %q: %w", s.opts.Schedule, err)
	}

	s.logger.Info("starting scheduler", zap.String("schedule", s.opts.Schedule), zap.String("timezone", s.opts.Location.String()))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runDaily() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if err := s.ExportDay(ctx, s.now()); err != nil {
		s.logger.Error("failed to export daily ledger rows", zap.Error(err))
	}
	if err := s.SendSummary(ctx); err != nil {
		s.logger.Error("failed to send daily summary", zap.Error(err))
	}
}

// ExportDay appends the production and closing rows of day's calendar date.
func (s *Scheduler) ExportDay(ctx context.Context, day time.Time) error {
	if s.opts.Sheet == nil {
		return nil
	}

	local := day.In(s.opts.Location)
	from := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.opts.Location)
	to := from.AddDate(0, 0, 1)

	rows := export.Rows(s.opts.Source.Snapshot(), from, to)
	if len(rows) == 0 {
		s.logger.Info("no ledger events to export", zap.String("day", from.Format("2006-01-02")))
		return nil
	}

	if err := s.opts.Sheet.AppendRows(ctx, LedgerRange, rows); err != nil {
		return fmt.Errorf("append ledger rows: %w", err)
	}

	s.logger.Info("daily ledger rows exported", zap.Int("rows", len(rows)))
	return nil
}

// SendSummary delivers the advisor's stock summary to the report recipient.
func (s *Scheduler) SendSummary(ctx context.Context) error {
	if s.opts.Sender == nil || s.opts.Advisor == nil {
		return nil
	}

	snap := s.opts.Source.Snapshot()
	summary := s.opts.Advisor.Summarize(ctx, snap.Buckets, snap.Flavors)
	body := fmt.Sprintf("Gelato stock, %s\n\n%s", s.now().In(s.opts.Location).Format("02/01/2006"), summary)

	ids, err := s.opts.Sender.SendText(ctx, s.opts.Recipient, body)
	if err != nil {
		return fmt.Errorf("deliver summary: %w", err)
	}

	s.logger.Info("daily summary sent", zap.Strings("message_ids", ids))
	return nil
}
