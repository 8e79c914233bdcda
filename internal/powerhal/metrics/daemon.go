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
	"time"

	"github.com/NexusGPU/powerhal/internal/powerhal/api"
	"github.com/NexusGPU/powerhal/internal/powerhal/framework"
)

const (
	opAcquire  = "acquire"
	opRelease  = "release"
	opApply    = "apply"
	opWithdraw = "withdraw"

	outcomeOK    = "ok"
	outcomeError = "error"
)

// InstrumentedDaemon counts and times every request made to the wrapped daemon
type InstrumentedDaemon struct {
	next       framework.PerfDaemon
	collectors *Collectors
}

var _ framework.PerfDaemon = &InstrumentedDaemon{}

func NewInstrumentedDaemon(next framework.PerfDaemon, collectors *Collectors) *InstrumentedDaemon {
	return &InstrumentedDaemon{next: next, collectors: collectors}
}

func (d *InstrumentedDaemon) observe(op string, start time.Time, err error) {
	d.collectors.DaemonLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
	outcome := outcomeOK
	if err != nil {
		outcome = outcomeError
	}
	d.collectors.DaemonCalls.WithLabelValues(op, outcome).Inc()
}

func (d *InstrumentedDaemon) AcquireTunables(hintID int32, duration int32) (framework.Handle, error) {
	start := time.Now()
	handle, err := d.next.AcquireTunables(hintID, duration)
	d.observe(opAcquire, start, err)
	return handle, err
}

func (d *InstrumentedDaemon) ReleaseTunables(handle framework.Handle) error {
	start := time.Now()
	err := d.next.ReleaseTunables(handle)
	d.observe(opRelease, start, err)
	return err
}

func (d *InstrumentedDaemon) ApplyTuningRequest(hintID int32, table api.TuningTable) error {
	start := time.Now()
	err := d.next.ApplyTuningRequest(hintID, table)
	d.observe(opApply, start, err)
	return err
}

func (d *InstrumentedDaemon) WithdrawTuningRequest(hintID int32) error {
	start := time.Now()
	err := d.next.WithdrawTuningRequest(hintID)
	d.observe(opWithdraw, start, err)
	return err
}
