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

package encode

import (
	"sync"

	"github.com/NexusGPU/powerhal/internal/powerhal/api"
	"github.com/NexusGPU/powerhal/internal/powerhal/framework"
	"github.com/NexusGPU/powerhal/internal/powerhal/metadata"
	"github.com/NexusGPU/powerhal/internal/powerhal/tuning"
	"k8s.io/klog/v2"
)

// Advisor turns video encode start/stop events into perf daemon tuning requests.
// Overlapping sessions (e.g. several camera clients) share one request: it is applied
// when the session count goes from 0 to 1 and withdrawn when it drops back to 0.
type Advisor struct {
	daemon    framework.PerfDaemon
	governors framework.GovernorSource
	platform  framework.PlatformCapabilities

	// mu serializes session accounting together with the daemon call it triggers
	mu          sync.Mutex
	refCount    int
	applied     bool
	appliedHint int32
}

func NewAdvisor(daemon framework.PerfDaemon, governors framework.GovernorSource, platform framework.PlatformCapabilities) *Advisor {
	return &Advisor{
		daemon:    daemon,
		governors: governors,
		platform:  platform,
	}
}

// OnVideoEncodeHint handles one encode event. Events that can't be acted upon are
// reported as ignored and only logged.
func (a *Advisor) OnVideoEncodeHint(data *string) api.HintResult {
	klog.V(4).Info("Got video encode hint")

	governor, err := a.governors.CurrentGovernor()
	if err != nil {
		klog.Errorf("Can't obtain scaling governor: %v", err)
		return api.HintIgnored
	}

	if data == nil {
		klog.V(4).Info("video encode hint without metadata")
		return api.HintIgnored
	}
	md, err := metadata.ParseVideoEncode(*data)
	if err != nil {
		klog.Errorf("Error occurred while parsing metadata %q: %v", *data, err)
		return api.HintIgnored
	}
	// the daemon client tracks one request per hint id, so sharing the display id
	// would turn this apply into a no-op and let the withdraw drop the display request
	if md.HintID == tuning.DisplayStateHintID {
		klog.Warningf("video encode hint id 0x%x is reserved for display tuning", md.HintID)
		return api.HintIgnored
	}

	switch md.State {
	case api.EncodeStateStart:
		table, ok := a.selectTable(governor)
		if !ok {
			klog.V(4).Infof("no encode tuning for governor %q", governor)
			return api.HintIgnored
		}
		a.start(md.HintID, table)
		return api.HintHandled
	case api.EncodeStateStop:
		if governor != tuning.GovernorSchedutil && governor != tuning.GovernorInteractive {
			klog.V(4).Infof("no encode tuning for governor %q", governor)
			return api.HintIgnored
		}
		a.stop()
		return api.HintHandled
	default:
		klog.Warningf("video encode hint with unknown state %d", md.State)
		return api.HintIgnored
	}
}

func (a *Advisor) selectTable(governor string) (api.TuningTable, bool) {
	switch governor {
	case tuning.GovernorSchedutil:
		if a.platform != nil && a.platform.IsLowEndVariant() {
			return tuning.SchedutilLowEndEncode(), true
		}
		return tuning.SchedutilEncode(), true
	case tuning.GovernorInteractive:
		return tuning.InteractiveEncode(), true
	default:
		return nil, false
	}
}

func (a *Advisor) start(hintID int32, table api.TuningTable) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.refCount++
	if a.refCount != 1 || a.applied {
		klog.V(4).Infof("encode session joined, %d active", a.refCount)
		return
	}
	if err := a.daemon.ApplyTuningRequest(hintID, table); err != nil {
		klog.Errorf("Failed to apply video encode tuning 0x%x: %v", hintID, err)
		return
	}
	a.applied = true
	a.appliedHint = hintID
	klog.Infof("applied video encode tuning 0x%x (%d tunables)", hintID, len(table))
}

func (a *Advisor) stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.refCount == 0 {
		klog.Warningf("video encode stop without a matching start")
		return
	}
	a.refCount--
	if a.refCount > 0 {
		klog.V(4).Infof("encode session left, %d active", a.refCount)
		return
	}
	a.withdrawLocked()
}

func (a *Advisor) withdrawLocked() error {
	if !a.applied {
		return nil
	}
	hintID := a.appliedHint
	a.applied = false
	a.appliedHint = 0
	if err := a.daemon.WithdrawTuningRequest(hintID); err != nil {
		klog.Errorf("Failed to withdraw video encode tuning 0x%x: %v", hintID, err)
		return err
	}
	klog.Infof("withdrew video encode tuning 0x%x", hintID)
	return nil
}

// Sessions returns the number of overlapping encode sessions
func (a *Advisor) Sessions() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.refCount
}

// Applied reports whether tuning is applied and under which hint id
func (a *Advisor) Applied() (bool, int32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.applied, a.appliedHint
}

// Reset withdraws any applied tuning and forgets all sessions
func (a *Advisor) Reset() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.refCount = 0
	return a.withdrawLocked()
}
