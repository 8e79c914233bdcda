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

// Package hal is the power HAL module instance. It owns all hint state and
// dispatches platform hints to the mode tracker, encode advisor and display handler.
package hal

import (
	"github.com/NexusGPU/powerhal/internal/powerhal/api"
	"github.com/NexusGPU/powerhal/internal/powerhal/display"
	"github.com/NexusGPU/powerhal/internal/powerhal/encode"
	"github.com/NexusGPU/powerhal/internal/powerhal/framework"
	"github.com/NexusGPU/powerhal/internal/powerhal/modes"
	"github.com/hashicorp/go-multierror"
	"k8s.io/klog/v2"
)

// Observer is notified after every dispatched hint with the outcome of the handler
// that processed it, which may differ from what is reported to the caller.
type Observer interface {
	HintDispatched(hint api.PowerHint, result api.HintResult)
	StateChanged(state api.StateSnapshot)
}

type Options struct {
	Daemon    framework.PerfDaemon
	Governors framework.GovernorSource
	Platform  framework.PlatformCapabilities

	// ModeHints overrides the mode to hint id mapping, nil means defaults
	ModeHints modes.HintTable

	Observer Observer
}

type HAL struct {
	modes    *modes.Tracker
	encode   *encode.Advisor
	display  *display.Handler
	observer Observer
}

func New(opts Options) *HAL {
	return &HAL{
		modes:    modes.NewTracker(opts.Daemon, opts.ModeHints),
		encode:   encode.NewAdvisor(opts.Daemon, opts.Governors, opts.Platform),
		display:  display.NewHandler(opts.Daemon, opts.Governors),
		observer: opts.Observer,
	}
}

// PowerHint dispatches one platform hint. data may be nil.
func (h *HAL) PowerHint(hint api.PowerHint, data *api.HintData) api.HintResult {
	klog.V(4).Infof("Got power hint %s", hint)

	var observed, result api.HintResult
	switch hint {
	case api.PowerHintSustainedPerformance:
		observed = h.setMode(api.PerformanceModeSustained, data)
		result = observed
	case api.PowerHintVRMode:
		observed = h.setMode(api.PerformanceModeVR, data)
		result = observed
	case api.PowerHintVideoEncode:
		var metadata *string
		if data != nil {
			metadata = data.Metadata
		}
		observed = h.encode.OnVideoEncodeHint(metadata)
		result = api.HintHandled
	default:
		// VSync and every other code are left to the platform default
		observed = api.HintNone
		result = api.HintNone
	}

	h.notify(hint, observed)
	return result
}

func (h *HAL) setMode(mode api.PerformanceMode, data *api.HintData) api.HintResult {
	if data == nil || data.Value == nil {
		klog.Warningf("mode hint 0x%x without a value", uint8(mode))
		return api.HintNone
	}
	return h.modes.SetMode(mode, *data.Value != 0)
}

// SetInteractive reports a display state change. It is always handled.
func (h *HAL) SetInteractive(on bool) api.HintResult {
	result := h.display.SetInteractive(on)
	if h.observer != nil {
		h.observer.StateChanged(h.State())
	}
	return result
}

func (h *HAL) notify(hint api.PowerHint, result api.HintResult) {
	if h.observer == nil {
		return
	}
	h.observer.HintDispatched(hint, result)
	h.observer.StateChanged(h.State())
}

// State returns a copy of the current hint state
func (h *HAL) State() api.StateSnapshot {
	current := h.modes.Current()
	handle := h.modes.Handle()
	applied, hintID := h.encode.Applied()
	return api.StateSnapshot{
		ActiveModes:      current,
		ActiveModeName:   current.String(),
		ModeHandleHeld:   handle.Valid(),
		ModeHandle:       int32(handle),
		EncodeRefCount:   h.encode.Sessions(),
		EncodeApplied:    applied,
		EncodeHintID:     hintID,
		DisplayHintSent:  h.display.Sent(),
		InteractiveState: h.display.Interactive(),
	}
}

// Close releases every outstanding daemon request
func (h *HAL) Close() error {
	var result *multierror.Error
	if err := h.modes.Release(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := h.encode.Reset(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := h.display.Reset(); err != nil {
		result = multierror.Append(result, err)
	}
	if h.observer != nil {
		h.observer.StateChanged(h.State())
	}
	return result.ErrorOrNil()
}
