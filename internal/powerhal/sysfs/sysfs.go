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

package sysfs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/NexusGPU/powerhal/internal/powerhal/framework"
	"k8s.io/klog/v2"
)

const (
	DefaultRoot = "/sys"

	scalingGovernorPattern = "devices/system/cpu/cpu%d/cpufreq/scaling_governor"
	socIDFile              = "devices/soc0/soc_id"

	// DefaultScanCores is the number of cores tried when looking for a readable governor
	DefaultScanCores = 4
)

var ErrGovernorUnreadable = errors.New("can't obtain scaling governor")

// Reader reads platform nodes below a sysfs mount point
type Reader struct {
	Root string
}

// NewReader creates a reader rooted at root, empty means /sys
func NewReader(root string) *Reader {
	if root == "" {
		root = DefaultRoot
	}
	return &Reader{Root: root}
}

func (r *Reader) path(rel string) string {
	return filepath.Join(r.Root, rel)
}

func readTrimmed(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	value := strings.TrimSpace(string(data))
	if value == "" {
		return "", fmt.Errorf("%s is empty", path)
	}
	return value, nil
}

// ReadScalingGovernor returns the scaling governor of a single core.
// Offline cores have no cpufreq directory and fail here.
func (r *Reader) ReadScalingGovernor(core int) (string, error) {
	return readTrimmed(r.path(fmt.Sprintf(scalingGovernorPattern, core)))
}

// ReadSocID returns the numeric platform identifier
func (r *Reader) ReadSocID() (int, error) {
	value, err := readTrimmed(r.path(socIDFile))
	if err != nil {
		return 0, err
	}
	id, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid soc id %q: %w", value, err)
	}
	return id, nil
}

// GovernorDetector finds the active governor by trying cores in order until one answers
type GovernorDetector struct {
	Reader *Reader
	Cores  int
}

var _ framework.GovernorSource = &GovernorDetector{}

func NewGovernorDetector(reader *Reader) *GovernorDetector {
	return &GovernorDetector{Reader: reader, Cores: DefaultScanCores}
}

// CurrentGovernor is read fresh on every call
func (p *GovernorDetector) CurrentGovernor() (string, error) {
	cores := p.Cores
	if cores <= 0 {
		cores = DefaultScanCores
	}
	var lastErr error
	for core := range cores {
		governor, err := p.Reader.ReadScalingGovernor(core)
		if err == nil {
			return governor, nil
		}
		klog.V(4).Infof("scaling governor of cpu%d unreadable: %v", core, err)
		lastErr = err
	}
	return "", fmt.Errorf("%w: %v", ErrGovernorUnreadable, lastErr)
}
