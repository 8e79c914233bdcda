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
	"sync"

	"k8s.io/klog/v2"
)

// DryRunLibrary accepts every request and hands out increasing handles.
// It lets the HAL run on hosts without the vendor client library.
type DryRunLibrary struct {
	mu         sync.Mutex
	nextHandle int32
	held       map[int32]struct{}
}

var _ Library = &DryRunLibrary{}

func NewDryRunLibrary() *DryRunLibrary {
	return &DryRunLibrary{held: make(map[int32]struct{})}
}

func (l *DryRunLibrary) acquire() int32 {
	l.nextHandle++
	l.held[l.nextHandle] = struct{}{}
	return l.nextHandle
}

func (l *DryRunLibrary) PerfHint(hintID int32, pkg string, duration int32, hintType int32) int32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	handle := l.acquire()
	klog.Infof("[dry-run] perf_hint id=0x%x pkg=%q duration=%d type=%d -> %d", hintID, pkg, duration, hintType, handle)
	return handle
}

func (l *DryRunLibrary) LockAcquire(handle int32, duration int32, list []int32) int32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(list) == 0 || len(list)%2 != 0 {
		klog.Warningf("[dry-run] perf_lock_acq rejected odd resource list of %d values", len(list))
		return -1
	}
	newHandle := l.acquire()
	klog.Infof("[dry-run] perf_lock_acq handle=%d duration=%d resources=%d -> %d", handle, duration, len(list)/2, newHandle)
	return newHandle
}

func (l *DryRunLibrary) LockRelease(handle int32) int32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[handle]; !ok {
		klog.Warningf("[dry-run] perf_lock_rel unknown handle %d", handle)
		return -1
	}
	delete(l.held, handle)
	klog.Infof("[dry-run] perf_lock_rel handle=%d", handle)
	return 0
}

// Held returns the number of handles currently outstanding
func (l *DryRunLibrary) Held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.held)
}

func (l *DryRunLibrary) Loaded() bool {
	return true
}

func (l *DryRunLibrary) Close() error {
	return nil
}
