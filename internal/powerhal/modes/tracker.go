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

package modes

import (
	"fmt"
	"sync"

	"github.com/NexusGPU/powerhal/internal/powerhal/api"
	"github.com/NexusGPU/powerhal/internal/powerhal/framework"
	"k8s.io/klog/v2"
)

// Perf daemon hint ids for the performance modes
const (
	SustainedPerfHintID       int32 = 0x00001206
	VRModeHintID              int32 = 0x00001207
	VRModeSustainedPerfHintID int32 = 0x00001301

	noHint     int32 = 0
	indefinite int32 = 0
)

// HintTable maps a combination of performance modes to the daemon hint id serving it
type HintTable map[api.PerformanceMode]int32

// DefaultHintTable returns the stock mode to hint id mapping
func DefaultHintTable() HintTable {
	return HintTable{
		api.PerformanceModeSustained:   SustainedPerfHintID,
		api.PerformanceModeVR:          VRModeHintID,
		api.PerformanceModeVRSustained: VRModeSustainedPerfHintID,
	}
}

// HintID returns 0 for masks that need no daemon request
func (t HintTable) HintID(mode api.PerformanceMode) int32 {
	hintID, ok := t[mode]
	if !ok {
		klog.V(4).Infof("Couldn't find the hint for mode 0x%x", uint8(mode))
		return noHint
	}
	klog.V(4).Infof("Hint id is 0x%x for mode 0x%x", hintID, uint8(mode))
	return hintID
}

// Tracker keeps the active performance modes and the single daemon handle serving them
type Tracker struct {
	daemon framework.PerfDaemon
	table  HintTable

	mu      sync.Mutex
	current api.PerformanceMode
	handle  framework.Handle
}

// NewTracker copies table, so later changes by the caller are not observed
func NewTracker(daemon framework.PerfDaemon, table HintTable) *Tracker {
	if table == nil {
		table = DefaultHintTable()
	}
	copied := make(HintTable, len(table))
	for mode, hintID := range table {
		copied[mode] = hintID
	}
	return &Tracker{daemon: daemon, table: copied}
}

// SetMode enables or disables mode. On a failed switch the active modes are unchanged.
func (t *Tracker) SetMode(mode api.PerformanceMode, enable bool) api.HintResult {
	t.mu.Lock()
	defer t.mu.Unlock()

	var next api.PerformanceMode
	if enable {
		klog.Infof("Enable request for mode: 0x%x", uint8(mode))
		if t.current.Has(mode) {
			klog.V(4).Infof("Mode 0x%x already enabled", uint8(mode))
			return api.HintHandled
		}
		next = t.current.With(mode)
	} else {
		klog.Infof("Disable request for mode: 0x%x", uint8(mode))
		if !t.current.Has(mode) {
			klog.V(4).Infof("Mode 0x%x already disabled", uint8(mode))
			return api.HintHandled
		}
		next = t.current.Without(mode)
	}

	if err := t.switchMode(next); err != nil {
		klog.Errorf("Couldn't switch to mode 0x%x: %v", uint8(next), err)
		t.restoreLocked()
		return api.HintNone
	}
	t.current = next
	klog.Infof("Current mode is 0x%x (%s)", uint8(t.current), t.current)
	return api.HintHandled
}

// switchMode releases the held handle before acquiring the one for mode, never holding two
func (t *Tracker) switchMode(mode api.PerformanceMode) error {
	if t.handle.Valid() {
		klog.V(4).Infof("Releasing handle 0x%x", int32(t.handle))
		if err := t.daemon.ReleaseTunables(t.handle); err != nil {
			klog.Warningf("Failed to release handle 0x%x: %v", int32(t.handle), err)
		}
		t.handle = 0
	}

	hintID := t.table.HintID(mode)
	if hintID == noHint {
		return nil
	}
	handle, err := t.daemon.AcquireTunables(hintID, indefinite)
	if err != nil {
		return err
	}
	if !handle.Valid() {
		return fmt.Errorf("hint 0x%x acquired invalid handle %d", hintID, handle)
	}
	klog.V(4).Infof("Acquired handle 0x%x", int32(handle))
	t.handle = handle
	return nil
}

// restoreLocked re-acquires the hint of the unchanged mask after a failed switch
// released its handle. Failures are only logged, the mask is kept either way.
func (t *Tracker) restoreLocked() {
	if t.handle.Valid() {
		return
	}
	hintID := t.table.HintID(t.current)
	if hintID == noHint {
		return
	}
	handle, err := t.daemon.AcquireTunables(hintID, indefinite)
	if err != nil || !handle.Valid() {
		klog.Errorf("Couldn't restore hint 0x%x for mode 0x%x: handle=%d err=%v", hintID, uint8(t.current), handle, err)
		return
	}
	klog.Infof("Restored handle 0x%x for mode 0x%x", int32(handle), uint8(t.current))
	t.handle = handle
}

// Current returns the active mode mask
func (t *Tracker) Current() api.PerformanceMode {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Handle returns the daemon handle currently held, zero if none
func (t *Tracker) Handle() framework.Handle {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.handle
}

// Release gives back the held handle and returns to normal mode
func (t *Tracker) Release() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.current = api.PerformanceModeNormal
	if !t.handle.Valid() {
		return nil
	}
	handle := t.handle
	t.handle = 0
	return t.daemon.ReleaseTunables(handle)
}
