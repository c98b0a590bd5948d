package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// bucketID renders <INITIALS>-<DDMM>-<NN>-<RAND>, e.g. PIS-1910-03-7F2A.
func bucketID(initials string, date time.Time, sequence int, suffix string) string {
	return fmt.Sprintf("%s-%02d%02d-%02d-%s", strings.ToUpper(initials), date.Day(), int(date.Month()), sequence, suffix)
}

func randomSuffix() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:4])
}

// lastSequence returns the highest sequence already recorded for the flavor on
// the calendar day of date. Production logs are counted as well as live
// buckets so that numbers freed by sold or deleted buckets are never reused.
// Must hold l.mu.
func (l *Ledger) lastSequence(flavorID string, date time.Time) int {
	recorded := 0
	for _, log := range l.state.ProductionLogs {
		if log.FlavorID == flavorID && l.sameDay(log.ProducedAt, date) {
			recorded += log.BucketCount
		}
	}

	highest := 0
	for _, b := range l.state.Buckets {
		if b.FlavorID == flavorID && l.sameDay(b.ProducedAt, date) && b.Sequence > highest {
			highest = b.Sequence
		}
	}

	return max(recorded, highest)
}

func (l *Ledger) sameDay(a, b time.Time) bool {
	ay, am, ad := a.In(l.location).Date()
	by, bm, bd := b.In(l.location).Date()
	return ay == by && am == bm && ad == bd
}
