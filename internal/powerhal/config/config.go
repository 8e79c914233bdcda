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

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/NexusGPU/powerhal/internal/constants"
	"github.com/NexusGPU/powerhal/internal/powerhal/api"
	"github.com/NexusGPU/powerhal/internal/powerhal/modes"
	"github.com/NexusGPU/powerhal/internal/powerhal/perfd"
	"sigs.k8s.io/yaml"
)

// Config is the optional daemon config file. Command line flags and env vars
// take precedence over values read from the file.
type Config struct {
	Port             int    `json:"port,omitempty"`
	PerfdLibraryPath string `json:"perfdLibraryPath,omitempty"`
	SysfsRoot        string `json:"sysfsRoot,omitempty"`
	DryRun           bool   `json:"dryRun,omitempty"`

	Metrics   MetricsConfig   `json:"metrics,omitempty"`
	ModeHints ModeHintsConfig `json:"modeHints,omitempty"`
}

type MetricsConfig struct {
	// OutputPath of the line protocol file, empty disables the recorder
	OutputPath string `json:"outputPath,omitempty"`
	// Interval is a Go duration such as "10s"
	Interval string `json:"interval,omitempty"`

	interval time.Duration
}

// ModeHintsConfig overrides the perf daemon hint id of a performance mode mask
type ModeHintsConfig struct {
	Sustained   *int32 `json:"sustained,omitempty"`
	VR          *int32 `json:"vr,omitempty"`
	VRSustained *int32 `json:"vrSustained,omitempty"`
}

func Default() *Config {
	return &Config{
		Port:             constants.DefaultPort,
		PerfdLibraryPath: perfd.DefaultLibraryPath,
		SysfsRoot:        constants.DefaultSysfsRoot,
		Metrics: MetricsConfig{
			OutputPath: constants.DefaultMetricsPath,
			Interval:   constants.DefaultMetricsInterval.String(),
			interval:   constants.DefaultMetricsInterval,
		},
	}
}

// Load reads filename on top of the defaults
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", filename, err)
	}
	if err := cfg.Normalize(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", filename, err)
	}
	return cfg, nil
}

// Normalize fills unset values with defaults and validates the rest
func (c *Config) Normalize() error {
	if c.Port == 0 {
		c.Port = constants.DefaultPort
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.PerfdLibraryPath == "" {
		c.PerfdLibraryPath = perfd.DefaultLibraryPath
	}
	if c.SysfsRoot == "" {
		c.SysfsRoot = constants.DefaultSysfsRoot
	}
	if c.Metrics.Interval == "" {
		c.Metrics.interval = constants.DefaultMetricsInterval
		c.Metrics.Interval = c.Metrics.interval.String()
	} else {
		interval, err := time.ParseDuration(c.Metrics.Interval)
		if err != nil {
			return fmt.Errorf("metrics interval: %w", err)
		}
		if interval <= 0 {
			return fmt.Errorf("metrics interval must be positive, got %s", c.Metrics.Interval)
		}
		c.Metrics.interval = interval
	}
	for name, hintID := range map[string]*int32{
		"sustained":   c.ModeHints.Sustained,
		"vr":          c.ModeHints.VR,
		"vrSustained": c.ModeHints.VRSustained,
	} {
		if hintID != nil && *hintID < 0 {
			return fmt.Errorf("mode hint %s must not be negative", name)
		}
	}
	return nil
}

// IntervalDuration returns the parsed metrics interval
func (m MetricsConfig) IntervalDuration() time.Duration {
	if m.interval <= 0 {
		return constants.DefaultMetricsInterval
	}
	return m.interval
}

// ModeHintTable returns the default table with the configured overrides applied.
// An override of 0 leaves that mode without a daemon request.
func (c *Config) ModeHintTable() modes.HintTable {
	table := modes.DefaultHintTable()
	if c.ModeHints.Sustained != nil {
		table[api.PerformanceModeSustained] = *c.ModeHints.Sustained
	}
	if c.ModeHints.VR != nil {
		table[api.PerformanceModeVR] = *c.ModeHints.VR
	}
	if c.ModeHints.VRSustained != nil {
		table[api.PerformanceModeVRSustained] = *c.ModeHints.VRSustained
	}
	return table
}
