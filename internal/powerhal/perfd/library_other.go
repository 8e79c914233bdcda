//go:build !(darwin || linux || freebsd || netbsd)

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
	"runtime"
)

// NativeLibrary is unavailable on this platform
type NativeLibrary struct{}

// NewNativeLibrary always fails outside unix platforms
func NewNativeLibrary(libPath string) (*NativeLibrary, error) {
	return nil, fmt.Errorf("perfd client library %s is not supported on %s", libPath, runtime.GOOS)
}

func (l *NativeLibrary) PerfHint(int32, string, int32, int32) int32 { return -1 }

func (l *NativeLibrary) LockAcquire(int32, int32, []int32) int32 { return -1 }

func (l *NativeLibrary) LockRelease(int32) int32 { return -1 }

func (l *NativeLibrary) Loaded() bool { return false }

func (l *NativeLibrary) Close() error { return nil }
