/*
Copyright 2024.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package metrics

import (
	"net/http"

	"github.com/NexusGPU/powerhal/internal/powerhal/api"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "powerhal"

// Collectors holds the HAL metrics on a private registry
type Collectors struct {
	Registry *prometheus.Registry

	HintsTotal      *prometheus.CounterVec
	DaemonCalls     *prometheus.CounterVec
	DaemonLatency   *prometheus.HistogramVec
	ActiveModes     prometheus.Gauge
	ModeHandleHeld  prometheus.Gauge
	EncodeSessions  prometheus.Gauge
	EncodeApplied   prometheus.Gauge
	DisplayHintSent prometheus.Gauge
}

func NewCollectors() *Collectors {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Collectors{
		Registry: reg,
		HintsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "hal",
			Name:      "hints_total",
			Help:      "Total power hints dispatched, by hint and handler result",
		}, []string{"hint", "result"}),
		DaemonCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "perfd",
			Name:      "calls_total",
			Help:      "Total perf daemon requests, by operation and outcome",
		}, []string{"op", "outcome"}),
		DaemonLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "perfd",
			Name:      "call_duration_seconds",
			Help:      "Perf daemon request duration",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}, []string{"op"}),
		ActiveModes: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "hal",
			Name:      "active_modes",
			Help:      "Bit mask of the active performance modes",
		}),
		ModeHandleHeld: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "hal",
			Name:      "mode_handle_held",
			Help:      "1 while a performance mode handle is held",
		}),
		EncodeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "hal",
			Name:      "encode_sessions",
			Help:      "Number of overlapping video encode sessions",
		}),
		EncodeApplied: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "hal",
			Name:      "encode_tuning_applied",
			Help:      "1 while video encode tuning is applied",
		}),
		DisplayHintSent: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "hal",
			Name:      "display_tuning_applied",
			Help:      "1 while display off tuning is applied",
		}),
	}
}

// HintDispatched implements hal.Observer
func (c *Collectors) HintDispatched(hint api.PowerHint, result api.HintResult) {
	c.HintsTotal.WithLabelValues(hint.String(), result.String()).Inc()
}

// StateChanged implements hal.Observer
func (c *Collectors) StateChanged(state api.StateSnapshot) {
	c.ActiveModes.Set(float64(state.ActiveModes))
	c.ModeHandleHeld.Set(boolToFloat(state.ModeHandleHeld))
	c.EncodeSessions.Set(float64(state.EncodeRefCount))
	c.EncodeApplied.Set(boolToFloat(state.EncodeApplied))
	c.DisplayHintSent.Set(boolToFloat(state.DisplayHintSent))
}

// Handler serves the registry in the prometheus exposition format
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.Registry, promhttp.HandlerOpts{Registry: c.Registry})
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
