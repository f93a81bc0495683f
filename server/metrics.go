package server

import (
	"context"
	"time"

	"github.com/mattLLVW/gifgrid/giphy"
	"github.com/mattLLVW/gifgrid/models"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	searches *prometheus.CounterVec
	duration prometheus.Histogram
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		searches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gifgrid_searches_total",
			Help: "Searches sent to giphy by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gifgrid_search_duration_seconds",
			Help:    "Time spent waiting for giphy.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.searches, m.duration)
	return m
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, giphy.ErrTransport):
		return "transport"
	case errors.Is(err, giphy.ErrParse):
		return "parse"
	case errors.Is(err, giphy.ErrMalformedResponse):
		return "malformed"
	default:
		return "error"
	}
}

type instrumentedSearcher struct {
	next    models.Searcher
	metrics *metrics
}

func (s *instrumentedSearcher) Search(ctx context.Context, term string) ([]models.GifResult, error) {
	start := time.Now()
	gifs, err := s.next.Search(ctx, term)
	s.metrics.duration.Observe(time.Since(start).Seconds())
	s.metrics.searches.WithLabelValues(outcome(err)).Inc()
	return gifs, err
}

var _ models.Searcher = &instrumentedSearcher{}
