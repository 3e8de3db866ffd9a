// Copyright (c) 2024 The goat-locking-wrapper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package metrics provides global access to a set of meters. The
// backend defaults to no-op; a process that wants real metrics calls
// InitializePrometheusMetrics once at startup.
package metrics

import (
	"net/http"
	"sync"
)

var backend Backend = noop{}

// Backend creates and caches meters by name.
type Backend interface {
	CountMeter(name string) CountMeter
	CountVecMeter(name string, labels []string) CountVecMeter
	GaugeMeter(name string) GaugeMeter
	GaugeVecMeter(name string, labels []string) GaugeVecMeter
	HistogramMeter(name string, buckets []int64) HistogramMeter
	HistogramVecMeter(name string, labels []string, buckets []int64) HistogramVecMeter
	Handler() http.Handler
}

// BucketHTTPReqs is the bucket layout for HTTP request durations in ms.
var BucketHTTPReqs = []int64{
	0, 1, 2, 5, 10, 20, 30, 50, 75, 100,
	150, 200, 300, 400, 500, 750, 1000,
	1500, 2000, 3000, 4000, 5000, 10000,
}

// CountMeter is a monotonically increasing counter.
type CountMeter interface {
	Add(int64)
}

// CountVecMeter is a counter partitioned by labels.
type CountVecMeter interface {
	AddWithLabel(int64, map[string]string)
}

// GaugeMeter is a value that can go up and down.
type GaugeMeter interface {
	Add(int64)
	Set(int64)
}

// GaugeVecMeter is a gauge partitioned by labels.
type GaugeVecMeter interface {
	AddWithLabel(int64, map[string]string)
	SetWithLabel(int64, map[string]string)
}

// HistogramMeter aggregates observations into buckets.
type HistogramMeter interface {
	Observe(int64)
}

// HistogramVecMeter is a histogram partitioned by labels.
type HistogramVecMeter interface {
	ObserveWithLabels(int64, map[string]string)
}

func Counter(name string) CountMeter { return backend.CountMeter(name) }

func CounterVec(name string, labels []string) CountVecMeter {
	return backend.CountVecMeter(name, labels)
}

func Gauge(name string) GaugeMeter { return backend.GaugeMeter(name) }

func GaugeVec(name string, labels []string) GaugeVecMeter {
	return backend.GaugeVecMeter(name, labels)
}

func Histogram(name string, buckets []int64) HistogramMeter {
	return backend.HistogramMeter(name, buckets)
}

func HistogramVec(name string, labels []string, buckets []int64) HistogramVecMeter {
	return backend.HistogramVecMeter(name, labels, buckets)
}

// HTTPHandler returns the scrape endpoint handler of the active backend.
func HTTPHandler() http.Handler { return backend.Handler() }

// LazyLoad defers meter creation to first use, so package-level meter
// vars do not pin the backend choice at init time.
func LazyLoad[T any](f func() T) func() T {
	var (
		once   sync.Once
		result T
	)
	return func() T {
		once.Do(func() { result = f() })
		return result
	}
}

func LazyLoadCounter(name string) func() CountMeter {
	return LazyLoad(func() CountMeter { return Counter(name) })
}

func LazyLoadCounterVec(name string, labels []string) func() CountVecMeter {
	return LazyLoad(func() CountVecMeter { return CounterVec(name, labels) })
}

func LazyLoadGauge(name string) func() GaugeMeter {
	return LazyLoad(func() GaugeMeter { return Gauge(name) })
}

func LazyLoadGaugeVec(name string, labels []string) func() GaugeVecMeter {
	return LazyLoad(func() GaugeVecMeter { return GaugeVec(name, labels) })
}

func LazyLoadHistogram(name string, buckets []int64) func() HistogramMeter {
	return LazyLoad(func() HistogramMeter { return Histogram(name, buckets) })
}

func LazyLoadHistogramVec(name string, labels []string, buckets []int64) func() HistogramVecMeter {
	return LazyLoad(func() HistogramVecMeter { return HistogramVec(name, labels, buckets) })
}
