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
	"context"
	"io"
	"os"
	"time"

	"github.com/NexusGPU/powerhal/internal/constants"
	"github.com/NexusGPU/powerhal/internal/powerhal/api"
	"github.com/influxdata/line-protocol/v2/lineprotocol"
	"github.com/prometheus/procfs/sysfs"
	"gopkg.in/natefinch/lumberjack.v2"
	"k8s.io/klog/v2"
)

const (
	stateMeasurement   = "powerhal_state"
	cpufreqMeasurement = "powerhal_cpufreq"

	defaultNodeName = "unknown"
)

// StateSource is implemented by hal.HAL
type StateSource interface {
	State() api.StateSnapshot
}

// Recorder periodically appends the HAL state and per-cpu frequencies to a rotating
// file in influx line protocol
type Recorder struct {
	outputPath string
	interval   time.Duration
	nodeName   string
	source     StateSource
	sysfs      *sysfs.FS
}

// NewRecorder returns a recorder without cpufreq lines when sysfsRoot can't be opened
func NewRecorder(outputPath string, interval time.Duration, sysfsRoot string, source StateSource) *Recorder {
	nodeName := os.Getenv(constants.NodeNameEnv)
	if nodeName == "" {
		nodeName = defaultNodeName
	}
	if interval <= 0 {
		interval = constants.DefaultMetricsInterval
	}

	r := &Recorder{
		outputPath: outputPath,
		interval:   interval,
		nodeName:   nodeName,
		source:     source,
	}
	fs, err := sysfs.NewFS(sysfsRoot)
	if err != nil {
		klog.Warningf("cpufreq metrics disabled, can't open sysfs at %s: %v", sysfsRoot, err)
	} else {
		r.sysfs = &fs
	}
	return r
}

// Start records until ctx is done
func (r *Recorder) Start(ctx context.Context) {
	writer := &lumberjack.Logger{
		Filename:   r.outputPath,
		MaxSize:    100,
		MaxBackups: 10,
		MaxAge:     14,
	}

	ticker := time.NewTicker(r.interval)
	go func() {
		defer ticker.Stop()
		defer func() {
			if err := writer.Close(); err != nil {
				klog.Warningf("failed to close metrics file: %v", err)
			}
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.RecordState(writer)
				r.RecordCpufreq(writer)
			}
		}
	}()
}

func newEncoder() *lineprotocol.Encoder {
	enc := &lineprotocol.Encoder{}
	enc.SetPrecision(lineprotocol.Millisecond)
	return enc
}

func flush(enc *lineprotocol.Encoder, writer io.Writer) {
	if err := enc.Err(); err != nil {
		klog.Errorf("failed to encode metrics: %v", err)
		return
	}
	if _, err := writer.Write(enc.Bytes()); err != nil {
		klog.Errorf("failed to write metrics: %v", err)
	}
}

// RecordState writes one powerhal_state line
func (r *Recorder) RecordState(writer io.Writer) {
	state := r.source.State()
	enc := newEncoder()

	enc.StartLine(stateMeasurement)
	enc.AddTag("node", r.nodeName)
	enc.AddField("active_modes", lineprotocol.IntValue(int64(state.ActiveModes)))
	enc.AddField("display_hint_sent", lineprotocol.BoolValue(state.DisplayHintSent))
	enc.AddField("encode_applied", lineprotocol.BoolValue(state.EncodeApplied))
	enc.AddField("encode_sessions", lineprotocol.IntValue(int64(state.EncodeRefCount)))
	enc.AddField("interactive", lineprotocol.IntValue(int64(state.InteractiveState)))
	enc.AddField("mode_handle_held", lineprotocol.BoolValue(state.ModeHandleHeld))
	enc.EndLine(time.Now())

	flush(enc, writer)
}

// RecordCpufreq writes one powerhal_cpufreq line per cpu that exposes cpufreq
func (r *Recorder) RecordCpufreq(writer io.Writer) {
	if r.sysfs == nil {
		return
	}
	stats, err := r.sysfs.SystemCpufreq()
	if err != nil {
		klog.V(4).Infof("cpufreq unavailable: %v", err)
		return
	}

	now := time.Now()
	enc := newEncoder()
	for _, cpu := range stats {
		// cpus without a cpufreq directory are left zero valued
		if cpu.Name == "" {
			continue
		}
		enc.StartLine(cpufreqMeasurement)
		enc.AddTag("cpu", cpu.Name)
		if cpu.Governor != "" {
			enc.AddTag("governor", cpu.Governor)
		}
		enc.AddTag("node", r.nodeName)
		fields := 0
		for _, f := range []struct {
			name  string
			value *uint64
		}{
			{"cpuinfo_max_khz", cpu.CpuinfoMaximumFrequency},
			{"cpuinfo_min_khz", cpu.CpuinfoMinimumFrequency},
			{"scaling_cur_khz", cpu.ScalingCurrentFrequency},
			{"scaling_max_khz", cpu.ScalingMaximumFrequency},
			{"scaling_min_khz", cpu.ScalingMinimumFrequency},
		} {
			if f.value == nil {
				continue
			}
			enc.AddField(f.name, lineprotocol.UintValue(*f.value))
			fields++
		}
		if fields == 0 {
			// a line needs at least one field
			enc.AddField("online", lineprotocol.BoolValue(true))
		}
		enc.EndLine(now)
	}
	flush(enc, writer)
}
