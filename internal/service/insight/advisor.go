// Package insight turns the current stock into a short prose summary.
package insight

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/gelateria/internal/domain/models"
	"github.com/mamadbah2/gelateria/internal/metrics"
	"github.com/mamadbah2/gelateria/pkg/clients/anthropic"
)

// Fallback is returned whenever no summary can be generated.
const Fallback = "Insights are unavailable right now. Check the dashboard for current stock levels."

const (
	requestTimeout = 20 * time.Second

	systemPrompt = "You are an operations assistant for an artisanal gelato producer. " +
		"Given stock per flavor and location in grams, write three to five short sentences " +
		"pointing out low stock, imbalances between stores and what to produce next. Plain text only."
)

// Advisor summarises stock through a text-generation client.
type Advisor struct {
	client anthropic.Client
	logger *zap.Logger
}

// NewAdvisor builds an advisor. A nil client makes every summary the fallback.
func NewAdvisor(client anthropic.Client, logger *zap.Logger) *Advisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Advisor{client: client, logger: logger}
}

// Summarize never fails: errors and missing configuration yield Fallback.
func (a *Advisor) Summarize(ctx context.Context, buckets []models.Bucket, flavors []models.Flavor) string {
	if a.client == nil {
		metrics.AdvisorFallbacks.Inc()
		return Fallback
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	text, err := a.client.Complete(ctx, systemPrompt, BuildPrompt(buckets, flavors))
	if err != nil {
		a.logger.Warn("advisor request failed", zap.Error(err))
		metrics.AdvisorFallbacks.Inc()
		return Fallback
	}
	return text
}

type stockLine struct {
	flavor   string
	location models.Location
	buckets  int
	grams    float64
}

// BuildPrompt lists in-stock totals grouped by flavor and location.
func BuildPrompt(buckets []models.Bucket, flavors []models.Flavor) string {
	names := make(map[string]string, len(flavors))
	for _, f := range flavors {
		names[f.ID] = f.Name
	}

	type key struct {
		flavor   string
		location models.Location
	}
	grouped := map[key]*stockLine{}
	for _, b := range buckets {
		if b.Status != models.StatusInStock {
			continue
		}
		name, ok := names[b.FlavorID]
		if !ok {
			name = b.FlavorID
		}
		k := key{flavor: name, location: b.Location}
		line, ok := grouped[k]
		if !ok {
			line = &stockLine{flavor: name, location: b.Location}
			grouped[k] = line
		}
		line.buckets++
		line.grams += b.WeightGrams
	}

	if len(grouped) == 0 {
		return "Current stock: none. Every location is empty."
	}

	lines := make([]*stockLine, 0, len(grouped))
	for _, l := range grouped {
		lines = append(lines, l)
	}
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].flavor != lines[j].flavor {
			return lines[i].flavor < lines[j].flavor
		}
		return lines[i].location < lines[j].location
	})

	var sb strings.Builder
	sb.WriteString("Current stock:\n")
	for _, l := range lines {
		fmt.Fprintf(&sb, "- %s @ %s: %d buckets, %.0f g\n", l.flavor, l.location, l.buckets, l.grams)
	}
	return strings.TrimRight(sb.String(), "\n")
}
