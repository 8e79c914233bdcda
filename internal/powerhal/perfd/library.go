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
)

// DefaultLibraryPath is where the vendor ships the perf daemon client library
const DefaultLibraryPath = "libqti-perfd-client.so"

// TypeNone is passed as the hint type when enabling a daemon side hint
const TypeNone int32 = -1

var ErrLibraryNotLoaded = errors.New("perfd client library is not loaded")

// Library is the raw ABI of the vendor perf daemon client.
// Values below or equal to zero returned as handles mean the request was rejected.
type Library interface {
	// PerfHint maps to perf_hint(hint_id, pkg, duration, type)
	PerfHint(hintID int32, pkg string, duration int32, hintType int32) int32
	// LockAcquire maps to perf_lock_acq(handle, duration, list, numArgs)
	LockAcquire(handle int32, duration int32, list []int32) int32
	// LockRelease maps to perf_lock_rel(handle)
	LockRelease(handle int32) int32
	// Loaded reports whether the library symbols are resolved and usable
	Loaded() bool
	Close() error
}
