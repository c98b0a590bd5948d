package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/gelateria/internal/domain/models"
	"github.com/mamadbah2/gelateria/internal/service/reporting"
)

// ErrInvalidArguments indicates the command payload could not be parsed.
var ErrInvalidArguments = errors.New("invalid command arguments")

// ArgumentError reports malformed arguments. Hint is the text sent back to
// the user as is.
type ArgumentError struct {
	Hint string
}

func (e *ArgumentError) Error() string { return ErrInvalidArguments.Error() + ": " + e.Hint }

func (e *ArgumentError) Unwrap() error { return ErrInvalidArguments }

func invalidArgs(format string, args ...any) error {
	return &ArgumentError{Hint: fmt.Sprintf(format, args...)}
}

const (
	topWindow   = 7 * 24 * time.Hour
	defaultTopN = 5
	maxTopN     = 20
)

const helpText = "Gelato stock bot\n" +
	"stock - grams held at every location\n" +
	"store <a|b|c> - flavors in stock at a store\n" +
	"top [n] - most produced flavors in the last 7 days\n" +
	"insights - advice on what to produce next"

// ReportingAdapter defines the reporting functions required by the dispatcher.
type ReportingAdapter interface {
	Dashboard() reporting.Dashboard
	Matrix() []reporting.MatrixRow
	Top(from, to time.Time, n int) []reporting.FlavorProduction
}

// SnapshotSource exposes the ledger's current collections.
type SnapshotSource interface {
	Snapshot() models.Snapshot
}

// Summarizer produces the advisor's prose summary.
type Summarizer interface {
	Summarize(ctx context.Context, buckets []models.Bucket, flavors []models.Flavor) string
}

// Dispatcher answers parsed chat commands. It never mutates the ledger.
type Dispatcher interface {
	HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error)
}

// Service implements the Dispatcher interface.
type Service struct {
	reporting ReportingAdapter
	source    SnapshotSource
	advisor   Summarizer
	logger    *zap.Logger
	now       func() time.Time
}

// NewService constructs a command dispatcher.
func NewService(reportingSvc ReportingAdapter, source SnapshotSource, advisor Summarizer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		reporting: reportingSvc,
		source:    source,
		advisor:   advisor,
		logger:    logger,
		now:       time.Now,
	}
}

// HandleCommand renders the reply text for cmd. Malformed arguments yield an
// *ArgumentError.
func (s *Service) HandleCommand(ctx context.Context, cmd models.Command, sender string) (string, error) {
	s.logger.Debug("dispatching command", zap.String("command", string(cmd.Type)), zap.String("sender", sender), zap.Strings("args", cmd.Args))

	switch cmd.Type {
	case models.CommandStock:
		return s.stockReply(), nil
	case models.CommandStore:
		store, err := parseStore(cmd.Args)
		if err != nil {
			return "", err
		}
		return s.storeReply(store), nil
	case models.CommandTop:
		n, err := parseTopN(cmd.Args)
		if err != nil {
			return "", err
		}
		return s.topReply(n), nil
	case models.CommandInsights:
		snap := s.source.Snapshot()
		return s.advisor.Summarize(ctx, snap.Buckets, snap.Flavors), nil
	default:
		return helpText, nil
	}
}

func (s *Service) stockReply() string {
	d := s.reporting.Dashboard()

	var sb strings.Builder
	fmt.Fprintf(&sb, "Stock: %d buckets, %s\n", d.TotalBuckets, kilograms(d.TotalGrams))
	for _, loc := range d.ByLocation {
		fmt.Fprintf(&sb, "%s: %d buckets, %s\n", loc.Location, loc.Buckets, kilograms(loc.Grams))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (s *Service) storeReply(store models.Location) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s in stock:\n", store)

	var total float64
	for _, row := range s.reporting.Matrix() {
		grams := row.Grams[store]
		if grams <= 0 {
			continue
		}
		total += grams
		fmt.Fprintf(&sb, "%s: %s\n", row.FlavorName, kilograms(grams))
	}
	if total == 0 {
		return fmt.Sprintf("%s has no gelato in stock.", store)
	}

	fmt.Fprintf(&sb, "Total: %s", kilograms(total))
	return sb.String()
}

func (s *Service) topReply(n int) string {
	now := s.now()
	top := s.reporting.Top(now.Add(-topWindow), now, n)
	if len(top) == 0 {
		return "Nothing was produced in the last 7 days."
	}

	var sb strings.Builder
	sb.WriteString("Most produced, last 7 days:\n")
	for i, f := range top {
		fmt.Fprintf(&sb, "%d. %s: %s (%d buckets)\n", i+1, f.FlavorName, kilograms(f.Grams), f.Buckets)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// parseStore accepts "a", "store a", "store-a" or "Store A".
func parseStore(args []string) (models.Location, error) {
	if len(args) == 0 {
		return "", invalidArgs("which store? Try: store a")
	}

	joined := strings.Join(args, " ")
	for _, candidate := range []string{joined, "store " + joined} {
		if loc, ok := models.ParseLocation(candidate); ok && loc.IsStore() {
			return loc, nil
		}
	}
	return "", invalidArgs("unknown store %q, use a, b or c", joined)
}

func parseTopN(args []string) (int, error) {
	if len(args) == 0 {
		return defaultTopN, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n <= 0 || n > maxTopN {
		return 0, invalidArgs("top takes a number between 1 and %d", maxTopN)
	}
	return n, nil
}

func kilograms(grams float64) string {
	return fmt.Sprintf("%.1f kg", grams/1000)
}
