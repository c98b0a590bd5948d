// Package metrics exposes Prometheus instrumentation for the ledger.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var BucketsProduced = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "gelato",
	Name:      "buckets_produced_total",
	Help:      "Buckets created by production events, by flavor",
}, []string{"flavor"})

var GramsProduced = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "gelato",
	Name:      "grams_produced_total",
	Help:      "Total grams of gelato produced",
})

var BucketsDistributed = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "gelato",
	Name:      "buckets_distributed_total",
	Help:      "Buckets moved from the factory, by destination store",
}, []string{"store"})

var StoreClosings = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "gelato",
	Name:      "store_closings_total",
	Help:      "Store-closing reconciliations, by store",
}, []string{"store"})

var BucketsSold = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "gelato",
	Name:      "buckets_sold_total",
	Help:      "Buckets marked sold during closing reconciliation, by store",
}, []string{"store"})

var PersistenceFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "gelato",
	Name:      "persistence_failures_total",
	Help:      "Write-through failures swallowed by the ledger, by operation",
}, []string{"operation"})

var ActiveBuckets = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "gelato",
	Name:      "active_buckets",
	Help:      "In-stock buckets currently held, by location",
}, []string{"location"})

var AdvisorFallbacks = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "gelato",
	Name:      "advisor_fallbacks_total",
	Help:      "Insight requests answered with the static fallback",
})
