// Copyright (c) 2024 The goat-locking-wrapper developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import "net/http"

type noop struct{}

func (noop) CountMeter(string) CountMeter                          { return noopMeter{} }
func (noop) CountVecMeter(string, []string) CountVecMeter          { return noopMeter{} }
func (noop) GaugeMeter(string) GaugeMeter                          { return noopMeter{} }
func (noop) GaugeVecMeter(string, []string) GaugeVecMeter          { return noopMeter{} }
func (noop) HistogramMeter(string, []int64) HistogramMeter         { return noopMeter{} }
func (noop) HistogramVecMeter(string, []string, []int64) HistogramVecMeter {
	return noopMeter{}
}
func (noop) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "metrics disabled", http.StatusNotFound)
	})
}

type noopMeter struct{}

func (noopMeter) Add(int64)                                 {}
func (noopMeter) Set(int64)                                 {}
func (noopMeter) AddWithLabel(int64, map[string]string)     {}
func (noopMeter) SetWithLabel(int64, map[string]string)     {}
func (noopMeter) Observe(int64)                             {}
func (noopMeter) ObserveWithLabels(int64, map[string]string) {}
