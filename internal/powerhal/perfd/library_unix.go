//go:build darwin || linux || freebsd || netbsd

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
	"fmt"
	"sync"

	"github.com/ebitengine/purego"
	"k8s.io/klog/v2"
)

// NativeLibrary binds the vendor perf daemon client library using purego
type NativeLibrary struct {
	libPath string
	mu      sync.RWMutex
	handle  uintptr
	loaded  bool

	perfHint    func(hintID int32, pkg *byte, duration int32, hintType int32) int32
	perfLockAcq func(handle int32, duration int32, list *int32, numArgs int32) int32
	perfLockRel func(handle int32) int32
}

var _ Library = &NativeLibrary{}

// NewNativeLibrary creates a binding and loads the library
func NewNativeLibrary(libPath string) (*NativeLibrary, error) {
	lib := &NativeLibrary{libPath: libPath}
	if err := lib.Load(); err != nil {
		return nil, fmt.Errorf("failed to load perfd client library from %s: %w", libPath, err)
	}
	return lib, nil
}

func registerLibFunc(handle uintptr, name string, fptr any) error {
	sym, err := purego.Dlsym(handle, name)
	if err != nil || sym == 0 {
		klog.Errorf("dlsym %s failed: sym=0x%x err=%v", name, sym, err)
		return fmt.Errorf("symbol %s not found: %w", name, err)
	}
	klog.V(4).Infof("dlsym %s -> 0x%x", name, sym)
	purego.RegisterFunc(fptr, sym)
	return nil
}

// Load opens the library and resolves the perf_hint and perf_lock symbols
func (l *NativeLibrary) Load() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.libPath == "" {
		return fmt.Errorf("library path is empty")
	}

	handle, err := purego.Dlopen(l.libPath, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		klog.Errorf("dlopen %s failed: %v", l.libPath, err)
		return fmt.Errorf("failed to open library: %w", err)
	}
	klog.Infof("dlopen %s handle=0x%x", l.libPath, handle)

	if err := registerLibFunc(handle, "perf_hint", &l.perfHint); err != nil {
		return err
	}
	if err := registerLibFunc(handle, "perf_lock_acq", &l.perfLockAcq); err != nil {
		return err
	}
	if err := registerLibFunc(handle, "perf_lock_rel", &l.perfLockRel); err != nil {
		return err
	}

	l.handle = handle
	l.loaded = true
	return nil
}

func (l *NativeLibrary) PerfHint(hintID int32, pkg string, duration int32, hintType int32) int32 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.loaded {
		return -1
	}
	var cPkg *byte
	if pkg != "" {
		buf := append([]byte(pkg), 0)
		cPkg = &buf[0]
	}
	return l.perfHint(hintID, cPkg, duration, hintType)
}

func (l *NativeLibrary) LockAcquire(handle int32, duration int32, list []int32) int32 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.loaded || len(list) == 0 {
		return -1
	}
	return l.perfLockAcq(handle, duration, &list[0], int32(len(list)))
}

func (l *NativeLibrary) LockRelease(handle int32) int32 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if !l.loaded {
		return -1
	}
	return l.perfLockRel(handle)
}

func (l *NativeLibrary) Loaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loaded
}

// Close forgets the resolved symbols. purego has no dlclose, the library stays mapped
// until the process exits.
func (l *NativeLibrary) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.loaded {
		l.perfHint = nil
		l.perfLockAcq = nil
		l.perfLockRel = nil
		l.handle = 0
		l.loaded = false
	}
	return nil
}
