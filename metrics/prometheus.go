// Copyright (c) 2024 The goat-locking-wrapper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/liqingnz/goat-locking-wrapper/log"
)

const namespace = "goat_wrapper"

// InitializePrometheusMetrics switches the package backend to
// Prometheus. Safe to call more than once; later calls are no-ops.
func InitializePrometheusMetrics() {
	if _, ok := backend.(*promBackend); !ok {
		backend = &promBackend{meters: make(map[string]any)}
	}
}

type promBackend struct {
	mu     sync.Mutex
	meters map[string]any
}

// getOrCreate caches by name so repeated lookups return the same meter.
func (b *promBackend) getOrCreate(name string, create func() any) any {
	b.mu.Lock()
	defer b.mu.Unlock()
	if m, ok := b.meters[name]; ok {
		return m
	}
	m := create()
	b.meters[name] = m
	return m
}

func register(c prometheus.Collector) {
	if err := prometheus.Register(c); err != nil {
		log.Warn("unable to register metric", "err", err)
	}
}

func (b *promBackend) CountMeter(name string) CountMeter {
	return b.getOrCreate(name, func() any {
		meter := prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: name})
		register(meter)
		return &promCounter{meter}
	}).(CountMeter)
}

func (b *promBackend) CountVecMeter(name string, labels []string) CountVecMeter {
	return b.getOrCreate(name, func() any {
		meter := prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: name}, labels)
		register(meter)
		return &promCounterVec{meter}
	}).(CountVecMeter)
}

func (b *promBackend) GaugeMeter(name string) GaugeMeter {
	return b.getOrCreate(name, func() any {
		meter := prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: name})
		register(meter)
		return &promGauge{meter}
	}).(GaugeMeter)
}

func (b *promBackend) GaugeVecMeter(name string, labels []string) GaugeVecMeter {
	return b.getOrCreate(name, func() any {
		meter := prometheus.NewGaugeVec(prometheus.GaugeOpts{Namespace: namespace, Name: name}, labels)
		register(meter)
		return &promGaugeVec{meter}
	}).(GaugeVecMeter)
}

func (b *promBackend) HistogramMeter(name string, buckets []int64) HistogramMeter {
	return b.getOrCreate(name, func() any {
		meter := prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      name,
			Buckets:   floatBuckets(buckets),
		})
		register(meter)
		return &promHistogram{meter}
	}).(HistogramMeter)
}

func (b *promBackend) HistogramVecMeter(name string, labels []string, buckets []int64) HistogramVecMeter {
	return b.getOrCreate(name, func() any {
		meter := prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      name,
			Buckets:   floatBuckets(buckets),
		}, labels)
		register(meter)
		return &promHistogramVec{meter}
	}).(HistogramVecMeter)
}

func (b *promBackend) Handler() http.Handler { return promhttp.Handler() }

func floatBuckets(buckets []int64) []float64 {
	out := make([]float64, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, float64(b))
	}
	return out
}

type promCounter struct{ c prometheus.Counter }

func (p *promCounter) Add(i int64) { p.c.Add(float64(i)) }

type promCounterVec struct{ c *prometheus.CounterVec }

func (p *promCounterVec) AddWithLabel(i int64, labels map[string]string) {
	p.c.With(labels).Add(float64(i))
}

type promGauge struct{ g prometheus.Gauge }

func (p *promGauge) Add(i int64) { p.g.Add(float64(i)) }
func (p *promGauge) Set(i int64) { p.g.Set(float64(i)) }

type promGaugeVec struct{ g *prometheus.GaugeVec }

func (p *promGaugeVec) AddWithLabel(i int64, labels map[string]string) {
	p.g.With(labels).Add(float64(i))
}

func (p *promGaugeVec) SetWithLabel(i int64, labels map[string]string) {
	p.g.With(labels).Set(float64(i))
}

type promHistogram struct{ h prometheus.Histogram }

func (p *promHistogram) Observe(i int64) { p.h.Observe(float64(i)) }

type promHistogramVec struct{ h *prometheus.HistogramVec }

func (p *promHistogramVec) ObserveWithLabels(i int64, labels map[string]string) {
	p.h.With(labels).Observe(float64(i))
}
