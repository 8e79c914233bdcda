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

package perfd

import (
	"errors"
	"fmt"
	"sync"

	"github.com/NexusGPU/powerhal/internal/powerhal/api"
	"github.com/NexusGPU/powerhal/internal/powerhal/framework"
	"github.com/samber/lo"
	"k8s.io/klog/v2"
)

var ErrInvalidHandle = errors.New("perf daemon returned an invalid handle")

// Client implements framework.PerfDaemon on top of the vendor client library.
// Tuning requests applied on behalf of a hint id are remembered so that they can be
// withdrawn by hint id later, there is at most one lock per hint id.
type Client struct {
	lib Library

	mu      sync.Mutex
	actions map[int32]framework.Handle // key: hint id
}

var _ framework.PerfDaemon = &Client{}

// NewClient creates a perf daemon client backed by lib
func NewClient(lib Library) *Client {
	return &Client{
		lib:     lib,
		actions: make(map[int32]framework.Handle),
	}
}

// AcquireTunables enables a daemon side hint, a zero duration holds it until released
func (c *Client) AcquireTunables(hintID int32, duration int32) (framework.Handle, error) {
	if c.lib == nil {
		return 0, ErrLibraryNotLoaded
	}
	handle := framework.Handle(c.lib.PerfHint(hintID, "", duration, TypeNone))
	if !handle.Valid() {
		return 0, fmt.Errorf("perf_hint 0x%x: %w (%d)", hintID, ErrInvalidHandle, handle)
	}
	klog.V(4).Infof("perf_hint 0x%x acquired handle %d", hintID, handle)
	return handle, nil
}

func (c *Client) ReleaseTunables(handle framework.Handle) error {
	if c.lib == nil {
		return ErrLibraryNotLoaded
	}
	if !handle.Valid() {
		return fmt.Errorf("release handle %d: %w", handle, ErrInvalidHandle)
	}
	if rc := c.lib.LockRelease(int32(handle)); rc < 0 {
		return fmt.Errorf("perf_lock_rel %d failed: %d", handle, rc)
	}
	klog.V(4).Infof("released handle %d", handle)
	return nil
}

// ApplyTuningRequest acquires an indefinite lock on the tunables of table.
// Applying a hint id that already holds a lock is a no-op.
func (c *Client) ApplyTuningRequest(hintID int32, table api.TuningTable) error {
	if c.lib == nil {
		return ErrLibraryNotLoaded
	}
	if len(table) == 0 {
		return fmt.Errorf("tuning request 0x%x has no tunables", hintID)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if handle, ok := c.actions[hintID]; ok {
		klog.V(4).Infof("tuning request 0x%x already active with handle %d", hintID, handle)
		return nil
	}
	handle := framework.Handle(c.lib.LockAcquire(0, 0, table.Flatten()))
	if !handle.Valid() {
		return fmt.Errorf("perf_lock_acq for hint 0x%x: %w (%d)", hintID, ErrInvalidHandle, handle)
	}
	c.actions[hintID] = handle
	klog.V(4).Infof("applied %d tunables for hint 0x%x with handle %d", len(table), hintID, handle)
	return nil
}

// WithdrawTuningRequest releases the lock applied for hintID, unknown hint ids are ignored
func (c *Client) WithdrawTuningRequest(hintID int32) error {
	if c.lib == nil {
		return ErrLibraryNotLoaded
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	handle, ok := c.actions[hintID]
	if !ok {
		klog.V(4).Infof("no active tuning request for hint 0x%x", hintID)
		return nil
	}
	delete(c.actions, hintID)
	if rc := c.lib.LockRelease(int32(handle)); rc < 0 {
		return fmt.Errorf("perf_lock_rel %d for hint 0x%x failed: %d", handle, hintID, rc)
	}
	klog.V(4).Infof("withdrew tuning request 0x%x (handle %d)", hintID, handle)
	return nil
}

// Ready fails until the client library is loaded
func (c *Client) Ready() error {
	if c.lib == nil || !c.lib.Loaded() {
		return ErrLibraryNotLoaded
	}
	return nil
}

// ActiveHints returns the hint ids that currently hold a tuning lock
func (c *Client) ActiveHints() []int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return lo.Keys(c.actions)
}

// Close withdraws every outstanding tuning request and closes the library
func (c *Client) Close() error {
	if c.lib == nil {
		return nil
	}
	for _, hintID := range c.ActiveHints() {
		if err := c.WithdrawTuningRequest(hintID); err != nil {
			klog.Errorf("failed to withdraw tuning request 0x%x on close: %v", hintID, err)
		}
	}
	return c.lib.Close()
}
