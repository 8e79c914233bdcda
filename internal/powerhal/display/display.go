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

package display

import (
	"sync"

	"github.com/NexusGPU/powerhal/internal/powerhal/api"
	"github.com/NexusGPU/powerhal/internal/powerhal/framework"
	"github.com/NexusGPU/powerhal/internal/powerhal/tuning"
	"k8s.io/klog/v2"
)

// Handler relaxes the interactive governor timers while the display is off
type Handler struct {
	daemon    framework.PerfDaemon
	governors framework.GovernorSource

	mu          sync.Mutex
	sent        bool
	interactive api.InteractiveState
}

func NewHandler(daemon framework.PerfDaemon, governors framework.GovernorSource) *Handler {
	return &Handler{
		daemon:      daemon,
		governors:   governors,
		interactive: api.InteractiveUnknown,
	}
}

// SetInteractive is always handled, failures are only logged
func (h *Handler) SetInteractive(on bool) api.HintResult {
	h.mu.Lock()
	defer h.mu.Unlock()

	governor, err := h.governors.CurrentGovernor()
	if err != nil {
		klog.Errorf("Can't obtain scaling governor: %v", err)
		return api.HintHandled
	}

	if governor == tuning.GovernorInteractive {
		if !on && !h.sent {
			h.applyLocked()
		} else if on && h.sent {
			h.withdrawLocked()
		}
	}

	if on {
		h.interactive = api.InteractiveOn
	} else {
		h.interactive = api.InteractiveOff
	}
	return api.HintHandled
}

func (h *Handler) applyLocked() {
	if err := h.daemon.ApplyTuningRequest(tuning.DisplayStateHintID, tuning.DisplayOff()); err != nil {
		klog.Errorf("Failed to apply display off tuning: %v", err)
		return
	}
	h.sent = true
	klog.Info("Display off tuning applied")
}

func (h *Handler) withdrawLocked() error {
	h.sent = false
	if err := h.daemon.WithdrawTuningRequest(tuning.DisplayStateHintID); err != nil {
		klog.Errorf("Failed to withdraw display off tuning: %v", err)
		return err
	}
	klog.Info("Display off tuning withdrawn")
	return nil
}

// Sent reports whether the display off request is outstanding
func (h *Handler) Sent() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sent
}

func (h *Handler) Interactive() api.InteractiveState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.interactive
}

// Reset withdraws an outstanding display request
func (h *Handler) Reset() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.sent {
		return nil
	}
	return h.withdrawLocked()
}
