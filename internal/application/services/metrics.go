package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	priceCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "price_cache_lookups_total",
			Help: "Per-coin price cache lookups by result",
		},
		[]string{"result"},
	)

	priceFetchDegraded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "price_fetch_degraded_total",
		Help: "Upstream batch price fetches that failed and were served from cache",
	})

	priceQuoteGaps = promauto.NewCounter(prometheus.CounterOpts{
		Name: "price_quote_gaps_total",
		Help: "Coins valued at zero because the provider returned no quote",
	})

	coalescedFetches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "price_fetch_coalesced_total",
		Help: "Upstream fetches shared with an identical in-flight request",
	})
)

var (
	repricerRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "repricer_runs_total",
			Help: "Repricing runs by outcome",
		},
		[]string{"outcome"},
	)

	repricerHoldings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "repricer_holdings_total",
			Help: "Holdings processed by the repricer by result",
		},
		[]string{"result"},
	)

	repricerDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "repricer_run_duration_seconds",
		Help:    "Time taken to reprice every user",
		Buckets: []float64{.1, .5, 1, 2.5, 5, 10, 30, 60, 120},
	})
)
