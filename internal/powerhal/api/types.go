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

package api

import (
	"strings"
)

// PerformanceMode is a bitmask of the performance modes currently requested.
// VRSustained is the union of the Sustained and VR bits.
type PerformanceMode uint8

const (
	PerformanceModeNormal      PerformanceMode = 0
	PerformanceModeSustained   PerformanceMode = 1 << 0
	PerformanceModeVR          PerformanceMode = 1 << 1
	PerformanceModeVRSustained                 = PerformanceModeSustained | PerformanceModeVR
)

// Has reports whether any bit of mode is set in m.
func (m PerformanceMode) Has(mode PerformanceMode) bool {
	return m&mode != 0
}

func (m PerformanceMode) With(mode PerformanceMode) PerformanceMode {
	return m | mode
}

func (m PerformanceMode) Without(mode PerformanceMode) PerformanceMode {
	return m &^ mode
}

func (m PerformanceMode) String() string {
	if m == PerformanceModeNormal {
		return "normal"
	}
	var parts []string
	if m.Has(PerformanceModeSustained) {
		parts = append(parts, "sustained")
	}
	if m.Has(PerformanceModeVR) {
		parts = append(parts, "vr")
	}
	if rest := m.Without(PerformanceModeVRSustained); rest != 0 {
		parts = append(parts, "unknown")
	}
	return strings.Join(parts, "+")
}

// Tunable is a single perf daemon resource opcode and the value requested for it.
type Tunable struct {
	Key   uint32 `json:"key"`
	Value int32  `json:"value"`
}

// TuningTable is an ordered list of tunables sent to the perf daemon as one request.
type TuningTable []Tunable

// Flatten returns the key, value, key, value... list understood by the perf daemon.
func (t TuningTable) Flatten() []int32 {
	out := make([]int32, 0, len(t)*2)
	for _, tunable := range t {
		out = append(out, int32(tunable.Key), tunable.Value)
	}
	return out
}

// EncodeState is the state attribute of video encode metadata.
type EncodeState int32

const (
	EncodeStateUnknown EncodeState = -1
	EncodeStateStop    EncodeState = 0
	EncodeStateStart   EncodeState = 1
)

func (s EncodeState) String() string {
	switch s {
	case EncodeStateStart:
		return "start"
	case EncodeStateStop:
		return "stop"
	default:
		return "unknown"
	}
}

// VideoEncodeMetadata is the parsed payload of a video encode hint.
type VideoEncodeMetadata struct {
	State  EncodeState
	HintID int32
}

// InteractiveState is the last interactive request seen by the HAL.
type InteractiveState int8

const (
	InteractiveUnknown InteractiveState = -1
	InteractiveOff     InteractiveState = 0
	InteractiveOn      InteractiveState = 1
)

// StateSnapshot is a point in time copy of the HAL state.
type StateSnapshot struct {
	ActiveModes      PerformanceMode  `json:"activeModes"`
	ActiveModeName   string           `json:"activeModeName"`
	ModeHandleHeld   bool             `json:"modeHandleHeld"`
	ModeHandle       int32            `json:"modeHandle,omitempty"`
	EncodeRefCount   int              `json:"encodeRefCount"`
	EncodeApplied    bool             `json:"encodeApplied"`
	EncodeHintID     int32            `json:"encodeHintId,omitempty"`
	DisplayHintSent  bool             `json:"displayHintSent"`
	InteractiveState InteractiveState `json:"interactiveState"`
}
