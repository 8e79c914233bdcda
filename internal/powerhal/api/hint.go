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
	"fmt"
	"strconv"
	"strings"
)

// PowerHint is the platform power hint code handed to the HAL by the power manager.
type PowerHint int32

const (
	PowerHintVSync                PowerHint = 0x1
	PowerHintInteraction          PowerHint = 0x2
	PowerHintVideoEncode          PowerHint = 0x3
	PowerHintVideoDecode          PowerHint = 0x4
	PowerHintLowPower             PowerHint = 0x5
	PowerHintSustainedPerformance PowerHint = 0x6
	PowerHintVRMode               PowerHint = 0x7
	PowerHintLaunch               PowerHint = 0x8
	PowerHintDisableTouch         PowerHint = 0x9
)

var powerHintNames = map[PowerHint]string{
	PowerHintVSync:                "VSYNC",
	PowerHintInteraction:          "INTERACTION",
	PowerHintVideoEncode:          "VIDEO_ENCODE",
	PowerHintVideoDecode:          "VIDEO_DECODE",
	PowerHintLowPower:             "LOW_POWER",
	PowerHintSustainedPerformance: "SUSTAINED_PERFORMANCE",
	PowerHintVRMode:               "VR_MODE",
	PowerHintLaunch:               "LAUNCH",
	PowerHintDisableTouch:         "DISABLE_TOUCH",
}

func (h PowerHint) String() string {
	if name, ok := powerHintNames[h]; ok {
		return name
	}
	return fmt.Sprintf("0x%x", int32(h))
}

// ParsePowerHint accepts either a hint name (case insensitive, optional POWER_HINT_ prefix)
// or a numeric code such as "6" or "0x6".
func ParsePowerHint(s string) (PowerHint, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	name = strings.TrimPrefix(name, "POWER_HINT_")
	if name == "" {
		return 0, fmt.Errorf("empty power hint")
	}
	for hint, n := range powerHintNames {
		if n == name {
			return hint, nil
		}
	}
	code, err := strconv.ParseInt(strings.ToLower(name), 0, 32)
	if err != nil {
		return 0, fmt.Errorf("unknown power hint %q", s)
	}
	return PowerHint(code), nil
}

// HintResult reports whether a hint was consumed.
type HintResult int

const (
	// HintHandled means the hint was consumed and needs no further processing.
	HintHandled HintResult = iota
	// HintNone means the hint was not handled.
	HintNone
	// HintIgnored means the hint was consumed without side effects, e.g. malformed metadata.
	HintIgnored
)

func (r HintResult) String() string {
	switch r {
	case HintHandled:
		return "handled"
	case HintNone:
		return "none"
	case HintIgnored:
		return "ignored"
	default:
		return fmt.Sprintf("HintResult(%d)", int(r))
	}
}

// HintData is the payload that accompanies a power hint.
type HintData struct {
	// Value carries the argument of mode hints, non-zero means enable.
	Value *int32 `json:"value,omitempty"`
	// Metadata carries the attribute string of video encode hints.
	Metadata *string `json:"metadata,omitempty"`
}
